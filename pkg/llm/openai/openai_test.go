package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quip/pkg/llm"
	"github.com/papercomputeco/quip/pkg/llm/openai"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		status   int
		respBody string
		gotPath  string
		gotAuth  string
		gotBody  map[string]any
	)

	BeforeEach(func() {
		status = http.StatusOK
		respBody = `{
			"model": "gpt-3.5-turbo",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "ha!"}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotBody = map[string]any{}
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(respBody))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() *openai.Client {
		client, err := openai.NewClient(openai.Config{
			BaseURL: server.URL,
			Model:   "gpt-3.5-turbo",
			APIKey:  "sk-test",
		})
		Expect(err).NotTo(HaveOccurred())
		return client
	}

	turns := []llm.Turn{
		llm.NewTurn(llm.RoleSystem, "be funny"),
		llm.NewTurn(llm.RoleUser, "tell me a joke"),
	}

	It("posts the turns to the chat completions endpoint", func() {
		_, err := newClient().Complete(context.Background(), turns, 2048)
		Expect(err).NotTo(HaveOccurred())

		Expect(gotPath).To(Equal("/v1/chat/completions"))
		Expect(gotAuth).To(Equal("Bearer sk-test"))
		Expect(gotBody["model"]).To(Equal("gpt-3.5-turbo"))
		Expect(gotBody["max_tokens"]).To(BeEquivalentTo(2048))

		messages, ok := gotBody["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(2))
		first, _ := messages[0].(map[string]any)
		Expect(first["role"]).To(Equal("system"))
		Expect(first["content"]).To(Equal("be funny"))
	})

	It("returns the provider's candidates in order", func() {
		resp, err := newClient().Complete(context.Background(), turns, 2048)
		Expect(err).NotTo(HaveOccurred())

		content, ok := resp.FirstChoice()
		Expect(ok).To(BeTrue())
		Expect(content).To(Equal("ha!"))
		Expect(resp.Usage.TotalTokens).To(Equal(13))
	})

	It("treats zero choices as a valid outcome, not an error", func() {
		respBody = `{"model": "gpt-3.5-turbo", "choices": []}`

		resp, err := newClient().Complete(context.Background(), turns, 2048)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Choices).To(BeEmpty())

		_, ok := resp.FirstChoice()
		Expect(ok).To(BeFalse())
	})

	It("omits max_tokens when the bound is not positive", func() {
		_, err := newClient().Complete(context.Background(), turns, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotBody).NotTo(HaveKey("max_tokens"))
	})

	It("surfaces the provider's error message on non-2xx responses", func() {
		status = http.StatusTooManyRequests
		respBody = `{"error": {"message": "rate limited", "type": "requests"}}`

		_, err := newClient().Complete(context.Background(), turns, 2048)
		Expect(err).To(MatchError(ContainSubstring("rate limited")))
		Expect(err).To(MatchError(ContainSubstring("429")))
	})

	It("errors on malformed response bodies", func() {
		respBody = `{"choices": [`

		_, err := newClient().Complete(context.Background(), turns, 2048)
		Expect(err).To(MatchError(ContainSubstring("decoding response")))
	})
})
