package view

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/bitfantasy/smdesk/internal/ops/entity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	records   []entity.Activity
	listErr   error
	createErr error
	calls     []string
}

func (f *fakeBackend) List(ctx context.Context) ([]entity.Activity, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]entity.Activity(nil), f.records...), nil
}

func (f *fakeBackend) Create(ctx context.Context, d *entity.ActivityDraft) (*entity.Activity, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	a := entity.Activity{ID: entity.ID(strconv.Itoa(len(f.records) + 1)), ActivityDraft: *d}
	f.records = append(f.records, a)
	return &a, nil
}

func (f *fakeBackend) Replace(ctx context.Context, id string, d *entity.ActivityDraft) (*entity.Activity, error) {
	f.calls = append(f.calls, "replace:"+id)
	for i := range f.records {
		if f.records[i].RecordID() == id {
			f.records[i].ActivityDraft = *d
			return &f.records[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete:"+id)
	for i := range f.records {
		if f.records[i].RecordID() == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

func today() entity.Date { return entity.MustDate("2024-01-10") }

func testKind(offset int) Kind[entity.Activity, entity.ActivityDraft] {
	return ActivityKind(offset, func() entity.ActivityDraft {
		return entity.NewActivityDraft(today(), entity.ActivityDefaults{})
	})
}

func seed(n int, docType func(i int) entity.DocumentType) []entity.Activity {
	out := make([]entity.Activity, n)
	for i := range out {
		out[i] = entity.Activity{ID: entity.ID(strconv.Itoa(i + 1)), ActivityDraft: entity.ActivityDraft{
			DocumentType: docType(i),
			Title:        "item " + strconv.Itoa(i+1),
		}}
	}
	return out
}

func newTestController(b *fakeBackend, offset int) *Controller[entity.Activity, entity.ActivityDraft] {
	return NewController(testKind(offset), Backend[entity.Activity, entity.ActivityDraft](b), State[entity.Activity, entity.ActivityDraft]{}, nil)
}

func TestPageCountAndLastPage(t *testing.T) {
	for n := 0; n <= 45; n++ {
		list := make([]int, n)
		pc := PageCount(n)
		expected := 0
		if n > 0 {
			expected = (n + 9) / 10
		}
		require.Equal(t, expected, pc, "n=%d", n)
		if n == 0 {
			assert.Empty(t, Paginate(list, 1))
			continue
		}
		last := Paginate(list, pc)
		want := n - 10*(pc-1)
		if n%10 == 0 {
			want = 10
		}
		assert.Len(t, last, want, "n=%d", n)
		assert.Empty(t, Paginate(list, pc+1))
	}
}

func TestPaginateSlices(t *testing.T) {
	list := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, Paginate(list, 1))
	assert.Equal(t, []int{11, 12}, Paginate(list, 2))
	assert.Equal(t, Paginate(list, 1), Paginate(list, 0))
}

func TestNewFormDefaults(t *testing.T) {
	c := newTestController(&fakeBackend{}, 1)
	c.New()

	st := c.State()
	assert.Equal(t, ModeCreating, st.Mode)
	require.NotNil(t, st.Draft)
	assert.Equal(t, entity.DocumentDashboard, st.Draft.DocumentType)
	assert.Equal(t, entity.TaskRegular, st.Draft.TaskType)
	assert.Equal(t, "2024-01-10", st.Draft.RequestDate.String())
	assert.Equal(t, "2024-01-10", st.Draft.WorkDate.String())
	assert.Equal(t, "한상욱", st.Draft.ITManager)
}

func TestSetField_RequestDateDerivesWorkDate(t *testing.T) {
	for _, offset := range []int{0, 1} {
		c := newTestController(&fakeBackend{}, offset)
		c.New()
		require.NoError(t, c.SetField("work_date", "2024-03-01"))
		require.NoError(t, c.SetField("request_date", "2024-01-10"))

		d := c.State().Draft
		assert.Equal(t, entity.MustDate("2024-01-10").AddDays(offset).String(), d.WorkDate.String())
		assert.Equal(t, "2024-01", d.YearMonth)
	}
}

func TestSetField_Validation(t *testing.T) {
	c := newTestController(&fakeBackend{}, 1)
	assert.ErrorIs(t, c.SetField("title", "x"), ErrNoForm)

	c.New()
	var ve *ValidationError
	require.ErrorAs(t, c.SetField("nope", "x"), &ve)
	assert.Equal(t, "nope", ve.Field)
	require.ErrorAs(t, c.SetField("document_type", "weird"), &ve)
	require.ErrorAs(t, c.SetField("request_date", "10/01"), &ve)
	require.ErrorAs(t, c.SetField("year_month", "2024-01"), &ve)

	require.NoError(t, c.SetField("document_type", "Plan"))
	require.NoError(t, c.SetField("task_type", "비정기"))
	require.NoError(t, c.SetField("seq_no", "12"))
	d := c.State().Draft
	assert.Equal(t, entity.DocumentPlan, d.DocumentType)
	assert.Equal(t, entity.TaskIrregular, d.TaskType)
	assert.Equal(t, 12, *d.SeqNo)
}

// 场景：新建活动，要求日2024-01-10，提交后列表首行显示作业日2024-01-11
func TestSubmitCreateScenario(t *testing.T) {
	b := &fakeBackend{}
	c := newTestController(b, 1)
	c.New()
	require.NoError(t, c.SetField("request_date", "2024-01-10"))
	require.NoError(t, c.SetField("title", "월간 점검"))
	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, []string{"create", "list"}, b.calls)
	v := c.View()
	assert.Equal(t, ModeListing, v.Mode)
	assert.Nil(t, v.Draft)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "2024-01-11", v.Items[0].WorkDate.String())
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	b := &fakeBackend{createErr: errors.New("remote 500")}
	c := newTestController(b, 1)
	c.New()
	require.NoError(t, c.SetField("title", "keep me"))

	err := c.Submit(context.Background())
	require.Error(t, err)
	st := c.State()
	assert.Equal(t, ModeCreating, st.Mode)
	assert.Equal(t, "keep me", st.Draft.Title)
}

func TestEditAndReplace(t *testing.T) {
	b := &fakeBackend{records: seed(3, func(int) entity.DocumentType { return entity.DocumentDashboard })}
	c := newTestController(b, 1)
	require.NoError(t, c.Reload(context.Background()))

	assert.ErrorIs(t, c.Edit("99"), ErrUnknownRecord)
	require.NoError(t, c.Edit("2"))
	assert.Equal(t, ModeEditing, c.State().Mode)
	assert.Equal(t, "item 2", c.State().Draft.Title)

	require.NoError(t, c.SetField("title", "edited"))
	require.NoError(t, c.Submit(context.Background()))
	assert.Contains(t, b.calls, "replace:2")
	assert.Equal(t, "edited", b.records[1].Title)
	assert.Equal(t, ModeListing, c.State().Mode)
}

func TestCancel(t *testing.T) {
	c := newTestController(&fakeBackend{}, 1)
	c.New()
	c.Cancel()
	assert.Equal(t, ModeListing, c.State().Mode)
	assert.Nil(t, c.State().Draft)
	assert.ErrorIs(t, c.Submit(context.Background()), ErrNoForm)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	b := &fakeBackend{records: seed(2, func(int) entity.DocumentType { return entity.DocumentDashboard })}
	c := newTestController(b, 1)
	require.NoError(t, c.Reload(context.Background()))
	b.calls = nil

	require.NoError(t, c.Delete(context.Background(), "1", nil))
	var prompt string
	require.NoError(t, c.Delete(context.Background(), "1", func(p string) bool {
		prompt = p
		return false
	}))
	assert.Empty(t, b.calls, "no store call without confirmation")
	assert.Len(t, c.View().Items, 2)
	assert.Equal(t, "정말로 이 활동을 삭제하시겠습니까?", prompt)

	require.NoError(t, c.Delete(context.Background(), "1", func(string) bool { return true }))
	assert.Equal(t, []string{"delete:1", "list"}, b.calls)
	assert.Len(t, c.View().Items, 1)
}

func TestFilterPlanBeforePaging(t *testing.T) {
	b := &fakeBackend{records: seed(25, func(i int) entity.DocumentType {
		if i%2 == 0 {
			return entity.DocumentPlan
		}
		return entity.DocumentDashboard
	})}
	c := newTestController(b, 1)
	require.NoError(t, c.Reload(context.Background()))

	c.SetPage(2)
	require.NoError(t, c.SetFilter(entity.DocumentPlan))
	v := c.View()
	assert.Equal(t, 2, v.Page, "filter does not reset the page")
	assert.Equal(t, 13, v.Total)
	assert.Equal(t, 2, v.PageCount)
	assert.Len(t, v.Items, 3)
	for _, item := range v.Items {
		assert.Equal(t, entity.DocumentPlan, item.DocumentType)
	}

	var ve *ValidationError
	assert.ErrorAs(t, c.SetFilter("other"), &ve)
	require.NoError(t, c.SetFilter(""))
	assert.Equal(t, 25, c.View().Total)

	c.SetPage(-4)
	assert.Equal(t, 1, c.View().Page)
}

func TestReloadFailureKeepsRecords(t *testing.T) {
	b := &fakeBackend{records: seed(4, func(int) entity.DocumentType { return entity.DocumentDashboard })}
	c := newTestController(b, 1)
	require.NoError(t, c.Reload(context.Background()))

	b.listErr = errors.New("network down")
	require.NoError(t, c.Reload(context.Background()))
	assert.Equal(t, ModeListing, c.State().Mode)
	assert.Len(t, c.View().Items, 4)
}

func TestMemorySessionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions()

	st, err := LoadState[State[entity.Activity, entity.ActivityDraft]](ctx, store, "missing")
	require.NoError(t, err)
	assert.Empty(t, st.Mode)

	b := &fakeBackend{records: seed(12, func(int) entity.DocumentType { return entity.DocumentPlan })}
	c := newTestController(b, 1)
	require.NoError(t, c.Reload(ctx))
	c.SetPage(2)
	c.New()
	require.NoError(t, c.SetField("request_date", "2024-02-29"))
	require.NoError(t, SaveState(ctx, store, "k", c.State()))

	restored, err := LoadState[State[entity.Activity, entity.ActivityDraft]](ctx, store, "k")
	require.NoError(t, err)
	c2 := NewController(testKind(1), Backend[entity.Activity, entity.ActivityDraft](b), restored, nil)
	v := c2.View()
	assert.Equal(t, ModeCreating, v.Mode)
	assert.Equal(t, 2, v.Page)
	assert.Len(t, v.Items, 2)
	assert.Equal(t, "2024-03-01", v.Draft.WorkDate.String())
}

func TestRedisSessions(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: host + ":" + port})
	defer rdb.Close()
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	store := NewRedisSessions(rdb, time.Minute)
	key := "test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	defer rdb.Del(ctx, store.prefix+key)

	_, err := store.Load(ctx, key)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, key, []byte(`{"mode":"listing"}`)))
	data, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"listing"}`, string(data))
}
