package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"conftrail/archive"
	"conftrail/confdiff"
	"conftrail/database"
	"conftrail/gitsync"
	"conftrail/web"
)

// fakeStore backs the web layer with the in-memory archive.
type fakeStore struct {
	mem     *archive.Memory
	devices map[uuid.UUID]database.DeviceRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		mem:     archive.NewMemory(),
		devices: make(map[uuid.UUID]database.DeviceRecord),
	}
}

func (f *fakeStore) Snapshot(ctx context.Context, deviceID uuid.UUID, ts archive.Timestamp) (string, error) {
	return f.mem.Snapshot(ctx, deviceID, ts)
}

func (f *fakeStore) ListDevices(context.Context) ([]database.DeviceRecord, error) {
	var out []database.DeviceRecord
	for _, d := range f.devices {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) GetDevice(_ context.Context, deviceID uuid.UUID) (*database.DeviceRecord, error) {
	d, ok := f.devices[deviceID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeStore) SnapshotTimestamps(_ context.Context, deviceID uuid.UUID) ([]archive.Timestamp, error) {
	return f.mem.Timestamps(deviceID), nil
}

func (f *fakeStore) CurrentSnapshot(_ context.Context, deviceID uuid.UUID) (*database.SnapshotRecord, error) {
	ts, text, ok := f.mem.Current(deviceID)
	if !ok {
		return nil, nil
	}
	return &database.SnapshotRecord{DeviceID: deviceID, RecordedAt: ts, Config: text}, nil
}

func (f *fakeStore) ClearConfigurations(_ context.Context, deviceID uuid.UUID) error {
	f.mem.Clear(deviceID)
	return nil
}

type fakeSyncer struct {
	err error
}

func (f fakeSyncer) Sync(context.Context) error { return f.err }

func mustParse(t *testing.T, s string) archive.Timestamp {
	t.Helper()
	ts, err := archive.ParseTimestamp(s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func setup(t *testing.T) (*fakeStore, uuid.UUID, http.Handler) {
	t.Helper()
	store := newFakeStore()
	device := uuid.New()
	store.devices[device] = database.DeviceRecord{DeviceID: device, Name: "edge-router-1", IPAddress: "10.0.0.1"}

	if err := store.mem.Record(device, mustParse(t, "2024+03+01 09:30:00.000000"), "interface eth0\nip 1.1.1.1\n"); err != nil {
		t.Fatal(err)
	}
	if err := store.mem.Record(device, mustParse(t, "2024+03+02 09:30:00.000000"), "interface eth0\nip 1.1.1.2\n"); err != nil {
		t.Fatal(err)
	}

	server := web.NewServer(store, fakeSyncer{}, ":0")
	return store, device, server.Handler()
}

func do(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandleDiff(t *testing.T) {
	_, device, handler := setup(t)

	rec := do(handler, http.MethodGet,
		"/api/devices/"+device.String()+"/diff?v1=2024%2B03%2B01+09:30:00.000000&v2=2024%2B03%2B02+09:30:00.000000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var result confdiff.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	want := []confdiff.Opcode{
		{Tag: confdiff.TagEqual, AStart: 0, AEnd: 1, BStart: 0, BEnd: 1},
		{Tag: confdiff.TagReplace, AStart: 1, AEnd: 2, BStart: 1, BEnd: 2},
	}
	if len(result.Opcodes) != len(want) {
		t.Fatalf("opcodes = %v, want %v", result.Opcodes, want)
	}
	for i := range want {
		if result.Opcodes[i] != want[i] {
			t.Errorf("opcode %d = %v, want %v", i, result.Opcodes[i], want[i])
		}
	}
}

func TestHandleDiff_MissingVersion(t *testing.T) {
	_, device, handler := setup(t)

	rec := do(handler, http.MethodGet,
		"/api/devices/"+device.String()+"/diff?v1=2024%2B03%2B01+09:30:00.000000&v2=2024%2B03%2B09+09:30:00.000000")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (body %s)", rec.Code, rec.Body)
	}
}

func TestHandleDiff_BadTimestamp(t *testing.T) {
	_, device, handler := setup(t)

	rec := do(handler, http.MethodGet, "/api/devices/"+device.String()+"/diff?v1=yesterday&v2=today")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
	}
}

func TestHandleGetConfiguration(t *testing.T) {
	_, device, handler := setup(t)

	rec := do(handler, http.MethodGet,
		"/api/devices/"+device.String()+"/configurations/2024+03+01%2009:30:00.000000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Timestamp string `json:"timestamp"`
		Config    string `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Config != "interface eth0\nip 1.1.1.1\n" {
		t.Errorf("config = %q", resp.Config)
	}

	rec = do(handler, http.MethodGet,
		"/api/devices/"+device.String()+"/configurations/2024+03+09%2009:30:00.000000")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unrecorded version: status = %d, want 404", rec.Code)
	}
}

func TestHandleListAndClearConfigurations(t *testing.T) {
	_, device, handler := setup(t)

	rec := do(handler, http.MethodGet, "/api/devices/"+device.String()+"/configurations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Timestamps []string `json:"timestamps"`
		Current    *string  `json:"current"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Timestamps) != 2 {
		t.Fatalf("timestamps = %v", resp.Timestamps)
	}
	if resp.Current == nil || *resp.Current != "2024+03+02 09:30:00.000000" {
		t.Errorf("current = %v", resp.Current)
	}

	rec = do(handler, http.MethodDelete, "/api/devices/"+device.String()+"/configurations")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: status = %d", rec.Code)
	}

	// Decode into a fresh struct: the cleared response omits "current", which
	// would otherwise leave the earlier value in place.
	var cleared struct {
		Timestamps []string `json:"timestamps"`
		Current    *string  `json:"current"`
	}
	rec = do(handler, http.MethodGet, "/api/devices/"+device.String()+"/configurations")
	if err := json.Unmarshal(rec.Body.Bytes(), &cleared); err != nil {
		t.Fatal(err)
	}
	if len(cleared.Timestamps) != 0 || cleared.Current != nil {
		t.Errorf("after clear: timestamps = %v, current = %v", cleared.Timestamps, cleared.Current)
	}
}

func TestHandleGetDevice_NotFound(t *testing.T) {
	_, _, handler := setup(t)

	rec := do(handler, http.MethodGet, "/api/devices/"+uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = do(handler, http.MethodGet, "/api/devices/not-a-uuid")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestHandleSync_InProgress(t *testing.T) {
	store := newFakeStore()
	server := web.NewServer(store, fakeSyncer{err: gitsync.ErrSyncInProgress}, ":0")

	rec := do(server.Handler(), http.MethodPost, "/api/sync")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}
