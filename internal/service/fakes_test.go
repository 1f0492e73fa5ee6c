package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/folio-labs/bulk-operations/internal/clients"
	"github.com/folio-labs/bulk-operations/internal/entity"
	"github.com/folio-labs/bulk-operations/internal/filestore"
	"github.com/folio-labs/bulk-operations/internal/service"
	st "github.com/folio-labs/bulk-operations/internal/store"
	"github.com/folio-labs/bulk-operations/internal/store/model"
)

// memStore keeps objects in memory with the same visibility rule as the
// bucket-backed store: a written object appears on Close.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

var _ filestore.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, r io.Reader, path string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return path, nil
}

func (m *memStore) Get(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Writer(_ context.Context, path string) (io.WriteCloser, error) {
	return &memWriter{store: m, path: path}, nil
}

func (m *memStore) NumOfLines(ctx context.Context, path string) (int, error) {
	r, err := m.Get(ctx, path)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return filestore.CountLines(r)
}

func (m *memStore) Remove(_ context.Context, paths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range paths {
		delete(m.objects, path)
	}
	return nil
}

func (m *memStore) object(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	return string(data), ok
}

type memWriter struct {
	store *memStore
	path  string
	buf   bytes.Buffer
	once  sync.Once
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	w.once.Do(func() {
		w.store.mu.Lock()
		defer w.store.mu.Unlock()
		w.store.objects[w.path] = w.buf.Bytes()
	})
	return nil
}

type fakeDataExport struct {
	jobID        uuid.UUID
	upsertStatus clients.JobStatus
	getStatus    clients.JobStatus
	upsertErr    error
}

var _ clients.DataExportClient = (*fakeDataExport)(nil)

func (f *fakeDataExport) UpsertJob(_ context.Context, job clients.Job) (clients.Job, error) {
	if f.upsertErr != nil {
		return clients.Job{}, f.upsertErr
	}
	job.ID = f.jobID
	job.Status = f.upsertStatus
	return job, nil
}

func (f *fakeDataExport) GetJob(_ context.Context, id uuid.UUID) (clients.Job, error) {
	return clients.Job{ID: id, Status: f.getStatus}, nil
}

type fakeBulkEdit struct {
	calls atomic.Int32
	err   error
}

var _ clients.BulkEditClient = (*fakeBulkEdit)(nil)

func (f *fakeBulkEdit) UploadFile(_ context.Context, _ uuid.UUID, filename string, r io.Reader) (string, error) {
	f.calls.Add(1)
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return filename, nil
}

type fakeRules struct{}

func (fakeRules) GetRules(context.Context, uuid.UUID) (service.RuleCollection, error) {
	return service.RuleCollection(`{"action":"uppercase-name"}`), nil
}

// fakeProcessor uppercases the user name; configured identifiers fail.
type fakeProcessor struct {
	failIdentifiers map[string]bool
}

func (f *fakeProcessor) Process(_ context.Context, identifier string, original entity.Record, _ service.RuleCollection) (service.UpdatedEntityHolder, error) {
	if f.failIdentifiers[identifier] {
		return service.UpdatedEntityHolder{}, fmt.Errorf("no rule applies to %s", identifier)
	}
	u := *original.(*entity.User)
	u.Name = strings.ToUpper(u.Name)
	return service.UpdatedEntityHolder{Preview: &u, Updated: &u}, nil
}

type fakeProcessorFactory struct {
	processor *fakeProcessor
}

func (f *fakeProcessorFactory) ProcessorFor(entity.EntityType) (service.DataProcessor, error) {
	return f.processor, nil
}

// fakeRecords applies the modified record, with per-identifier failure
// and unchanged behavior.
type fakeRecords struct {
	lockConflicts map[string]*service.OptimisticLockingError
	failures      map[string]error
	unchanged     map[string]bool
}

func (f *fakeRecords) UpdateEntity(_ context.Context, original, modified entity.Record, op *model.BulkOperation) (entity.Record, error) {
	id := original.Identifier(op.IdentifierType)
	if lockErr, ok := f.lockConflicts[id]; ok {
		return nil, lockErr
	}
	if err, ok := f.failures[id]; ok {
		return nil, err
	}
	if f.unchanged[id] {
		return nil, nil
	}
	return modified, nil
}

type fakeQueries struct {
	queryID uuid.UUID
}

func (f *fakeQueries) ExecuteQuery(context.Context, string, uuid.UUID) (uuid.UUID, error) {
	return f.queryID, nil
}

func (f *fakeQueries) CheckQueryExecutionStatus(_ context.Context, op *model.BulkOperation) (*model.BulkOperation, error) {
	return op, nil
}

type fakeEntityTypes struct{}

func (fakeEntityTypes) GetEntityTypeByID(context.Context, uuid.UUID) (entity.EntityType, error) {
	return entity.EntityTypeUser, nil
}

// countingStore counts DataProcessing saves to observe the progress
// debounce.
type countingStore struct {
	st.Store
	dpSaves atomic.Int32
}

func (c *countingStore) DataProcessing() st.DataProcessing {
	return &countingDataProcessing{DataProcessing: c.Store.DataProcessing(), saves: &c.dpSaves}
}

type countingDataProcessing struct {
	st.DataProcessing
	saves *atomic.Int32
}

func (c *countingDataProcessing) Save(ctx context.Context, dp *model.DataProcessing) error {
	c.saves.Add(1)
	return c.DataProcessing.Save(ctx, dp)
}
