package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/quip/pkg/relay"
)

// staticProvider serves a fixed status snapshot.
type staticProvider struct {
	status relay.Status
}

func (p *staticProvider) Status() relay.Status { return p.status }

var _ = Describe("Server", func() {
	var server *Server

	BeforeEach(func() {
		provider := &staticProvider{status: relay.Status{
			State:      relay.StateStreaming,
			Nick:       "quip",
			Identities: 3,
			Exchanges:  42,
		}}
		server = NewServer(Config{ListenAddr: ":0"}, provider, zap.NewNop())
	})

	Describe("GET /ping", func() {
		It("responds with pong", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
			Expect(body["message"]).To(Equal("pong"))
		})
	})

	Describe("GET /status", func() {
		It("returns the relay snapshot", func() {
			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var status relay.Status
			Expect(json.NewDecoder(resp.Body).Decode(&status)).To(Succeed())
			Expect(status.State).To(Equal(relay.StateStreaming))
			Expect(status.Nick).To(Equal("quip"))
			Expect(status.Identities).To(Equal(3))
			Expect(status.Exchanges).To(Equal(int64(42)))
		})
	})
})
