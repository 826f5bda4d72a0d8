package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/seidelmaycon/game-api/internal/domain/entity"
	repo "github.com/seidelmaycon/game-api/internal/domain/repository"
	"github.com/seidelmaycon/game-api/pkg/helpers"
	"github.com/seidelmaycon/game-api/pkg/validation"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupEventService() (*GameEventService, *memEventRepository) {
	events := &memEventRepository{}
	svc := NewGameEventService(events, helpers.NewDiscardLogger(), nil, "").
		WithClock(func() time.Time { return fixedNow })
	return svc, events
}

func ptrTime(t time.Time) *time.Time { return &t }

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var verrs *validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want *validation.Errors", err)
	}
	return verrs.FullMessages()
}

func TestRecord_CreateThenReplay(t *testing.T) {
	svc, events := setupEventService()
	ctx := context.Background()
	in := RecordInput{GameName: "Brevity", Type: "COMPLETED", OccurredAt: ptrTime(fixedNow.Add(-time.Hour))}

	first, err := svc.Record(ctx, 1, in)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !first.Created {
		t.Error("first Record() Created = false")
	}
	if first.Event.EventType != entity.EventTypeCompleted {
		t.Errorf("EventType = %v", first.Event.EventType)
	}

	second, err := svc.Record(ctx, 1, in)
	if err != nil {
		t.Fatalf("replay Record() error = %v", err)
	}
	if second.Created {
		t.Error("replay Created = true, want false")
	}
	if second.Event.ID != first.Event.ID {
		t.Errorf("replay ID = %d, want %d", second.Event.ID, first.Event.ID)
	}
	if events.creates != 1 {
		t.Errorf("store inserts = %d, want 1", events.creates)
	}
}

func TestRecord_ReplayIgnoresSubMicrosecondAndZone(t *testing.T) {
	svc, _ := setupEventService()
	ctx := context.Background()
	at := time.Date(2025, 5, 1, 10, 0, 0, 123456789, time.UTC)

	first, err := svc.Record(ctx, 1, RecordInput{GameName: "G", Type: "completed", OccurredAt: ptrTime(at)})
	if err != nil {
		t.Fatal(err)
	}
	sameInOtherZone := at.Add(-789).In(time.FixedZone("BRT", -3*3600))
	second, err := svc.Record(ctx, 1, RecordInput{GameName: "G", Type: " Completed ", OccurredAt: ptrTime(sameInOtherZone)})
	if err != nil {
		t.Fatal(err)
	}
	if second.Created || second.Event.ID != first.Event.ID {
		t.Errorf("second = %+v, want replay of %d", second, first.Event.ID)
	}
}

func TestRecord_DistinctKeys(t *testing.T) {
	svc, events := setupEventService()
	ctx := context.Background()
	at := fixedNow.Add(-time.Hour)

	inputs := []struct {
		user int64
		in   RecordInput
	}{
		{1, RecordInput{GameName: "A", Type: "completed", OccurredAt: ptrTime(at)}},
		{2, RecordInput{GameName: "A", Type: "completed", OccurredAt: ptrTime(at)}},
		{1, RecordInput{GameName: "B", Type: "completed", OccurredAt: ptrTime(at)}},
		{1, RecordInput{GameName: "A", Type: "completed", OccurredAt: ptrTime(at.Add(-time.Second))}},
	}
	for _, tc := range inputs {
		res, err := svc.Record(ctx, tc.user, tc.in)
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if !res.Created {
			t.Errorf("Record(%+v) Created = false", tc)
		}
	}
	if len(events.events) != 4 {
		t.Errorf("stored %d events, want 4", len(events.events))
	}
}

func TestRecord_Validation(t *testing.T) {
	past := ptrTime(fixedNow.Add(-time.Minute))
	tests := []struct {
		name string
		in   RecordInput
		want []string
	}{
		{
			name: "missing game name",
			in:   RecordInput{Type: "completed", OccurredAt: past},
			want: []string{"Game name can't be blank"},
		},
		{
			name: "unknown type",
			in:   RecordInput{GameName: "G", Type: "started", OccurredAt: past},
			want: []string{"Type is not included in the list"},
		},
		{
			name: "missing type",
			in:   RecordInput{GameName: "G", OccurredAt: past},
			want: []string{"Type can't be blank"},
		},
		{
			name: "missing occurred_at",
			in:   RecordInput{GameName: "G", Type: "completed"},
			want: []string{"Occurred at can't be blank"},
		},
		{
			name: "unparsable occurred_at",
			in:   RecordInput{GameName: "G", Type: "completed", OccurredAtInvalid: true},
			want: []string{"Occurred at is invalid"},
		},
		{
			name: "occurred_at now",
			in:   RecordInput{GameName: "G", Type: "completed", OccurredAt: ptrTime(fixedNow)},
			want: []string{"Occurred at must be less than 2025-06-01 12:00:00 UTC"},
		},
		{
			name: "occurred_at in the future",
			in:   RecordInput{GameName: "G", Type: "completed", OccurredAt: ptrTime(fixedNow.Add(time.Hour))},
			want: []string{"Occurred at must be less than 2025-06-01 12:00:00 UTC"},
		},
		{
			name: "everything missing",
			in:   RecordInput{},
			want: []string{"Game name can't be blank", "Occurred at can't be blank", "Type can't be blank"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, events := setupEventService()
			_, err := svc.Record(context.Background(), 1, tt.in)
			if got := validationMessages(t, err); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("messages = %v, want %v", got, tt.want)
			}
			if events.creates != 0 {
				t.Errorf("store inserts = %d, want 0", events.creates)
			}
		})
	}
}

func TestRecord_TypeErrorsNeverUseInternalName(t *testing.T) {
	svc, _ := setupEventService()
	_, err := svc.Record(context.Background(), 1, RecordInput{GameName: "G", Type: "bogus", OccurredAt: ptrTime(fixedNow.Add(-time.Hour))})
	var verrs *validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v", err)
	}
	if got := verrs.On("event_type"); got != nil {
		t.Errorf("On(event_type) = %v, want nil", got)
	}
	if got := verrs.On("type"); len(got) != 1 {
		t.Errorf("On(type) = %v, want one message", got)
	}
}

func TestRecord_InsertRaceReportsDuplicate(t *testing.T) {
	svc, events := setupEventService()
	events.createErr = repo.ErrDuplicate

	_, err := svc.Record(context.Background(), 1, RecordInput{GameName: "G", Type: "completed", OccurredAt: ptrTime(fixedNow.Add(-time.Hour))})
	want := []string{"Occurred at event already ingested for this user/game/type/occurred_at"}
	if got := validationMessages(t, err); !reflect.DeepEqual(got, want) {
		t.Errorf("messages = %v, want %v", got, want)
	}
}

func TestRecord_StoreErrors(t *testing.T) {
	boom := errors.New("db down")
	in := RecordInput{GameName: "G", Type: "completed", OccurredAt: ptrTime(fixedNow.Add(-time.Hour))}

	svc, events := setupEventService()
	events.findErr = boom
	if _, err := svc.Record(context.Background(), 1, in); !errors.Is(err, boom) {
		t.Errorf("find failure error = %v", err)
	}

	svc, events = setupEventService()
	events.createErr = boom
	if _, err := svc.Record(context.Background(), 1, in); !errors.Is(err, boom) {
		t.Errorf("create failure error = %v", err)
	}
}

func TestRecord_ConcurrentSubmissionsStoreOnce(t *testing.T) {
	svc, events := setupEventService()
	in := RecordInput{GameName: "G", Type: "completed", OccurredAt: ptrTime(fixedNow.Add(-time.Hour))}

	const n = 10
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(context.Background(), 1, in)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err == nil {
			continue
		}
		var verrs *validation.Errors
		if !errors.As(err, &verrs) || len(verrs.On("occurred_at")) != 1 {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if len(events.events) != 1 {
		t.Errorf("stored %d events, want 1", len(events.events))
	}
}

func TestRecord_IndexesCreatedEvents(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		doc   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		_ = json.Unmarshal(b, &doc)
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer srv.Close()

	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	if err != nil {
		t.Fatalf("NewESClient() error = %v", err)
	}
	events := &memEventRepository{}
	svc := NewGameEventService(events, helpers.NewDiscardLogger(), es, "game_events").
		WithClock(func() time.Time { return fixedNow })

	in := RecordInput{GameName: "Brevity", Type: "completed", OccurredAt: ptrTime(fixedNow.Add(-time.Hour))}
	if _, err := svc.Record(context.Background(), 3, in); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, err := svc.Record(context.Background(), 3, in); err != nil {
		t.Fatalf("replay Record() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 1 || paths[0] != "PUT /game_events/_doc/1" {
		t.Fatalf("es requests = %v, want one index of doc 1", paths)
	}
	if doc["game_name"] != "Brevity" || doc["type"] != "completed" || doc["user_id"] != float64(3) {
		t.Errorf("indexed doc = %v", doc)
	}
}

func TestRecord_IndexFailureIsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapping"}`))
	}))
	defer srv.Close()

	es, _ := helpers.NewESClient([]string{srv.URL}, "", "")
	svc := NewGameEventService(&memEventRepository{}, helpers.NewDiscardLogger(), es, "game_events").
		WithClock(func() time.Time { return fixedNow })

	res, err := svc.Record(context.Background(), 1, RecordInput{GameName: "G", Type: "completed", OccurredAt: ptrTime(fixedNow.Add(-time.Hour))})
	if err != nil || !res.Created {
		t.Errorf("Record() = %+v, %v; want created despite index failure", res, err)
	}
}
