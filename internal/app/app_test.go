package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/TaskManager/internal/config"
	"github.com/GoArmGo/TaskManager/internal/database/storage"
	"github.com/GoArmGo/TaskManager/internal/logger"
	"github.com/GoArmGo/TaskManager/internal/messaging/payloads"
	"github.com/GoArmGo/TaskManager/internal/testutil"
	"github.com/GoArmGo/TaskManager/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct{ calls int }

func (c *closeCounter) Close() error { c.calls++; return nil }

// fakeQueue реализует и публикацию, и потребление, как клиент RabbitMQ
type fakeQueue struct {
	closeCounter
	events  chan payloads.Event
	handled chan error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{events: make(chan payloads.Event, 16), handled: make(chan error, 16)}
}

func (q *fakeQueue) PublishEvent(_ context.Context, ev payloads.Event) error {
	q.events <- ev
	return nil
}

func (q *fakeQueue) StartConsumingEvents(ctx context.Context, handler func(context.Context, payloads.Event) error) error {
	go func() {
		for {
			select {
			case ev := <-q.events:
				q.handled <- handler(ctx, ev)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

type memFiles struct{ keys chan string }

func (m *memFiles) UploadFile(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.keys <- key
	return "mem://" + key, nil
}

func (m *memFiles) DeleteFile(context.Context, string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{ServerPort: "0", RequestTimeout: 5 * time.Second}
}

func newTestApp(t *testing.T, queue *fakeQueue, files *memFiles) (*App, *closeCounter) {
	t.Helper()
	c := testutil.OpenSQLite(t)
	log := logger.NewNop()
	store := storage.NewStore(c.DB, log)
	db := &closeCounter{}

	a := &App{
		Config: testConfig(),
		logger: log,
		db:     db,
	}
	// nil *fakeQueue в интерфейсе не равен nil, поэтому присваиваем явно
	if queue != nil {
		a.publisher = queue
		a.consumer = queue
	}
	a.users = usecase.NewUserUseCase(store, a.publisher, log)
	a.tasks = usecase.NewTaskUseCase(store, a.publisher, log)
	if files != nil {
		a.processor = usecase.NewEventProcessor(files, log)
	}
	return a, db
}

func TestServe_AnswersAndStops(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	base := fmt.Sprintf("http://%s", ln.Addr().String())
	resp, err := http.Post(base+"/user/create", "application/json",
		strings.NewReader(`{"username":"alice","firstname":"Alice","lastname":"Doe","age":30}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(base + "/user/")
	require.NoError(t, err)
	var users []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	_ = resp.Body.Close()
	assert.Len(t, users, 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_UnknownModeClosesResources(t *testing.T) {
	a, db := newTestApp(t, nil, nil)
	err := a.Run(context.Background(), "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
	assert.Equal(t, 1, db.calls)
}

func TestRun_WorkerRequiresQueue(t *testing.T) {
	a, _ := newTestApp(t, nil, nil)
	err := a.Run(context.Background(), ModeWorker)
	assert.ErrorContains(t, err, "RABBITMQ_URL")
}

func TestWorker_ArchivesDeletedUser(t *testing.T) {
	queue := newFakeQueue()
	files := &memFiles{keys: make(chan string, 1)}
	a, db := newTestApp(t, queue, files)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, ModeWorker) }()

	user, err := a.users.CreateUser(ctx, usecase.CreateUserInput{Username: "alice", Firstname: "Alice", Lastname: "Doe", Age: 30})
	require.NoError(t, err)
	require.NoError(t, a.users.DeleteUser(ctx, user.ID))

	select {
	case key := <-files.keys:
		assert.Equal(t, usecase.ArchiveKey(user.ID), key)
	case <-time.After(5 * time.Second):
		t.Fatal("archive was not written")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, db.calls)
	assert.Equal(t, 1, queue.calls, "shared rabbitmq client must be closed once")
}

var errDiskGone = errors.New("disk gone")

type failingCloser struct{}

func (failingCloser) Close() error { return errDiskGone }

func TestShutdown_ReportsErrors(t *testing.T) {
	a := &App{logger: logger.NewNop(), db: failingCloser{}}
	err := a.Shutdown()
	assert.ErrorIs(t, err, errDiskGone)
}
