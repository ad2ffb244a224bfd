package notification_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/employee"
	"github.com/frahmantamala/asset-management/internal/notification"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type mockDirectory struct {
	employees map[int64]*employee.Employee
}

func (m *mockDirectory) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	emp, exists := m.employees[id]
	if !exists {
		return nil, apperrors.ErrEmployeeNotFound
	}
	return emp, nil
}

// capturingProvider stands in for the email HTTP API and records delivered
// payloads.
type capturingProvider struct {
	mu       sync.Mutex
	payloads []map[string]interface{}
	server   *httptest.Server
}

func newCapturingProvider() *capturingProvider {
	p := &capturingProvider{}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err == nil {
			p.mu.Lock()
			p.payloads = append(p.payloads, payload)
			p.mu.Unlock()
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	return p
}

func (p *capturingProvider) delivered() []map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]map[string]interface{}, len(p.payloads))
	copy(out, p.payloads)
	return out
}

var _ = Describe("EventHandler", func() {
	var (
		provider  *capturingProvider
		client    *notification.Client
		handler   *notification.EventHandler
		bus       *events.EventBus
		directory *mockDirectory
		ctx       context.Context
	)

	const assigneeID = int64(42)

	BeforeEach(func() {
		provider = newCapturingProvider()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client = notification.NewClient(notification.Config{
			EmailAPIURL: provider.server.URL,
			FromAddress: "it@company.example",
			MaxWorkers:  1,
			SendTimeout: 2 * time.Second,
		}, logger)
		directory = &mockDirectory{employees: map[int64]*employee.Employee{
			assigneeID: {ID: assigneeID, Email: "dewi@company.example", Name: "Dewi"},
		}}
		handler = notification.NewEventHandler(client, directory, logger)
		bus = events.NewEventBus(logger)
		handler.RegisterEventHandlers(bus)
		ctx = context.Background()
	})

	AfterEach(func() {
		client.Shutdown()
		provider.server.Close()
	})

	Describe("asset status changes", func() {
		Context("when the asset has an assignee", func() {
			It("should mail the assignee", func() {
				assignee := assigneeID
				err := bus.PublishSync(ctx, events.NewAssetStatusChangedEvent(
					1, "LT-0001", "available", "assigned", &assignee))
				Expect(err).ToNot(HaveOccurred())

				Eventually(provider.delivered, "2s", "20ms").Should(HaveLen(1))
				payload := provider.delivered()[0]
				Expect(payload["to"]).To(Equal("dewi@company.example"))
				Expect(payload["subject"]).To(ContainSubstring("LT-0001"))
				Expect(payload["subject"]).To(ContainSubstring("assigned"))
			})
		})

		Context("when the asset has no assignee", func() {
			It("should route to the provider default with an empty recipient", func() {
				err := bus.PublishSync(ctx, events.NewAssetStatusChangedEvent(
					1, "LT-0001", "under_maintenance", "retired", nil))
				Expect(err).ToNot(HaveOccurred())

				Eventually(provider.delivered, "2s", "20ms").Should(HaveLen(1))
				payload := provider.delivered()[0]
				Expect(payload["to"]).To(Equal(""))
				Expect(payload["body"]).To(ContainSubstring("retired"))
			})
		})

		Context("when the recipient cannot be resolved", func() {
			It("should drop the message without failing the publish", func() {
				missing := int64(999)
				err := bus.PublishSync(ctx, events.NewAssetStatusChangedEvent(
					1, "LT-0001", "available", "assigned", &missing))
				Expect(err).ToNot(HaveOccurred())

				Consistently(provider.delivered, "200ms", "20ms").Should(BeEmpty())
			})
		})
	})
})
