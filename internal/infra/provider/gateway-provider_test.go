package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"whatsapp-gateway-client/internal/domain/entities"
	"whatsapp-gateway-client/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	Body        string
	ContentType string
	APIKey      string
}

// fakeGateway answers every request with the configured status and body and
// records what it received.
type fakeGateway struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeGateway(t *testing.T, status int, body string) *fakeGateway {
	g := &fakeGateway{status: status, body: body}
	g.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		g.mu.Lock()
		g.requests = append(g.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			Body:        string(raw),
			ContentType: r.Header.Get("Content-Type"),
			APIKey:      r.Header.Get(APIKeyHeader),
		})
		status, body := g.status, g.body
		g.mu.Unlock()

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(g.server.Close)
	return g
}

func (g *fakeGateway) recorded() []recordedRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]recordedRequest(nil), g.requests...)
}

func newTestClient(baseURL string) (*GatewayClient, *bytes.Buffer) {
	var logs bytes.Buffer
	log := logger.NewLoggerWithOutput(context.Background(), &logs, true, "debug")
	return NewGatewayClient(log, nil, baseURL, "K", "I"), &logs
}

// closedServerURL returns the address of a server that no longer listens.
func closedServerURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestSendTextEndToEnd(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{"success":true}`)
	client, _ := newTestClient(gw.server.URL)

	ok := client.SendText("5511999@c.us", "hi")
	require.True(t, ok)

	reqs := gw.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/esp32/send", reqs[0].Path)
	assert.Equal(t, "key=I", reqs[0].RawQuery)
	assert.Equal(t, `{"to":"5511999@c.us","text":"hi"}`, reqs[0].Body)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.Equal(t, "K", reqs[0].APIKey)
}

func TestSendTextRejectedByGateway(t *testing.T) {
	gw := newFakeGateway(t, http.StatusUnauthorized, `{"error":"bad key"}`)
	client, logs := newTestClient(gw.server.URL)

	assert.False(t, client.SendText("5511999@c.us", "hi"))
	assert.Contains(t, logs.String(), "HTTP Error: 401")
	assert.Contains(t, logs.String(), "bad key")

	err := client.Send(map[string]string{"to": "x", "text": "y"})
	require.Error(t, err)
	assert.Equal(t, KindRejected, KindOf(err))

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	assert.Equal(t, `{"error":"bad key"}`, gwErr.Body)
}

func TestSendTextToGroupAddsSuffixOnce(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{}`)
	client, _ := newTestClient(gw.server.URL)

	require.True(t, client.SendTextToGroup("120363", "hello"))
	require.True(t, client.SendTextToGroup("120363@g.us", "hello"))

	reqs := gw.recorded()
	require.Len(t, reqs, 2)
	for _, req := range reqs {
		assert.JSONEq(t, `{"to":"120363@g.us","text":"hello"}`, req.Body)
	}
}

func TestSendButtons(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{}`)
	client, _ := newTestClient(gw.server.URL)

	require.True(t, client.SendButtons("5511999@c.us", "Choose", []string{"Yes", "No", "Yes"}))

	reqs := gw.recorded()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"to":"5511999@c.us","text":"Choose","buttons":["Yes","No","Yes"]}`, reqs[0].Body)
}

func TestSendListAssignsRowIDs(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{}`)
	client, _ := newTestClient(gw.server.URL)

	sections := []entities.ListSection{
		{Title: "Lights", Rows: []string{"On", "Off"}},
		{Title: "Fan", Rows: []string{"Low", "Mid", "High"}},
	}
	require.True(t, client.SendList("5511999@c.us", "Control", "Devices", "Open", sections))

	reqs := gw.recorded()
	require.Len(t, reqs, 1)

	var payload struct {
		To   string `json:"to"`
		Text string `json:"text"`
		List struct {
			Title      string `json:"title"`
			ButtonText string `json:"buttonText"`
			Sections   []struct {
				Title string `json:"title"`
				Rows  []struct {
					Title string `json:"title"`
					RowID string `json:"rowId"`
				} `json:"rows"`
			} `json:"sections"`
		} `json:"list"`
	}
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &payload))

	assert.Equal(t, "5511999@c.us", payload.To)
	assert.Equal(t, "Control", payload.Text)
	assert.Equal(t, "Devices", payload.List.Title)
	assert.Equal(t, "Open", payload.List.ButtonText)
	require.Len(t, payload.List.Sections, 2)

	ids := map[string]bool{}
	for i, section := range payload.List.Sections {
		assert.Equal(t, sections[i].Title, section.Title)
		require.Len(t, section.Rows, len(sections[i].Rows))
		for j, row := range section.Rows {
			assert.Equal(t, sections[i].Rows[j], row.Title)
			assert.Equal(t, fmt.Sprintf("row_%d_%d", i, j), row.RowID)
			ids[row.RowID] = true
		}
	}
	assert.Len(t, ids, 5)
}

func TestSendLocation(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{}`)
	client, _ := newTestClient(gw.server.URL)

	require.True(t, client.SendLocation("5511999@c.us", -23.561414, -46.655881))

	reqs := gw.recorded()
	require.Len(t, reqs, 1)

	var payload struct {
		To       string                 `json:"to"`
		Location map[string]interface{} `json:"location"`
	}
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &payload))
	assert.Equal(t, "5511999@c.us", payload.To)
	assert.InDelta(t, -23.561414, payload.Location["lat"], 1e-9)
	assert.InDelta(t, -46.655881, payload.Location["lng"], 1e-9)
}

func TestSendUnencodablePayload(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{}`)
	client, _ := newTestClient(gw.server.URL)

	err := client.Send(map[string]interface{}{"bad": make(chan int)})
	require.Error(t, err)
	assert.Equal(t, KindEncode, KindOf(err))
	assert.Empty(t, gw.recorded())
}

func TestUnsupportedMethodMakesNoCall(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{}`)
	client, logs := newTestClient(gw.server.URL)

	for _, method := range []string{http.MethodPut, http.MethodDelete, "PATCH", ""} {
		_, ok := client.httpRequest(method, "/esp32/send?key=I", `{}`)
		assert.False(t, ok, method)

		_, err := client.do(method, "/esp32/send?key=I", `{}`)
		assert.Equal(t, KindUnsupportedMethod, KindOf(err), method)
	}

	assert.Empty(t, gw.recorded())
	assert.Contains(t, logs.String(), "Unsupported HTTP method")
}

func TestStatusQueries(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{"connected":true,"phone":"5511988887777","queueSize":4}`)
	client, _ := newTestClient(gw.server.URL)

	assert.True(t, client.IsConnected())
	assert.Equal(t, "5511988887777", client.GetPhoneNumber())
	assert.Equal(t, 4, client.GetQueueSize())

	reqs := gw.recorded()
	require.Len(t, reqs, 3)
	for _, req := range reqs {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/esp32/status", req.Path)
		assert.Equal(t, "key=I", req.RawQuery)
		assert.Equal(t, "K", req.APIKey)
	}
}

func TestStatusQueriesMissingFieldsAreZero(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{"connected":"yes","queueSize":"many"}`)
	client, _ := newTestClient(gw.server.URL)

	assert.False(t, client.IsConnected())
	assert.Equal(t, "", client.GetPhoneNumber())
	assert.Equal(t, 0, client.GetQueueSize())
}

func TestStatusQueriesCoerceNumbersAndStrings(t *testing.T) {
	cases := []struct {
		body      string
		connected bool
		queue     int
	}{
		{`{"connected":1,"queueSize":"4"}`, true, 4},
		{`{"connected":0,"queueSize":4.9}`, false, 4},
		{`{"connected":"true","queueSize":" 7 "}`, true, 7},
		{`{"connected":"false","queueSize":"-2"}`, false, -2},
		{`{"connected":null,"queueSize":null}`, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			gw := newFakeGateway(t, http.StatusOK, tc.body)
			client, _ := newTestClient(gw.server.URL)

			assert.Equal(t, tc.connected, client.IsConnected())
			assert.Equal(t, tc.queue, client.GetQueueSize())
		})
	}
}

func TestStatusQueriesFailSoft(t *testing.T) {
	cases := map[string]string{}

	rejected := newFakeGateway(t, http.StatusInternalServerError, `{"connected":true,"phone":"x","queueSize":9}`)
	cases["non-200"] = rejected.server.URL

	garbage := newFakeGateway(t, http.StatusOK, `{"connected":tru`)
	cases["malformed"] = garbage.server.URL

	cases["connection refused"] = closedServerURL()

	for name, baseURL := range cases {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(baseURL)

			assert.NotPanics(t, func() {
				assert.False(t, client.IsConnected())
				assert.Equal(t, "", client.GetPhoneNumber())
				assert.Equal(t, 0, client.GetQueueSize())
			})

			_, err := client.Status()
			assert.Error(t, err)
		})
	}
}

func TestStatusErrorKinds(t *testing.T) {
	rejected := newFakeGateway(t, http.StatusServiceUnavailable, `down`)
	client, _ := newTestClient(rejected.server.URL)
	_, err := client.Status()
	assert.Equal(t, KindRejected, KindOf(err))

	garbage := newFakeGateway(t, http.StatusOK, `not json`)
	client, _ = newTestClient(garbage.server.URL)
	_, err = client.Status()
	assert.Equal(t, KindDecode, KindOf(err))

	client, logs := newTestClient(closedServerURL())
	_, err = client.Status()
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Contains(t, logs.String(), "Connection failed")
}

func messagesBody(n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{"id":"m%d","from":"55119%04d@c.us","text":"msg %d","time":%d}`, i, i, i, 1700000000+i))
	}
	return `{"messages":[` + strings.Join(items, ",") + `]}`
}

func TestGetMessages(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, messagesBody(3))
	client, _ := newTestClient(gw.server.URL)

	buf := make([]entities.Message, MaxMessages)
	count := client.GetMessages(buf)
	require.Equal(t, 3, count)

	assert.Equal(t, entities.Message{ID: "m0", From: "551190000@c.us", Text: "msg 0", Timestamp: 1700000000}, buf[0])
	assert.Equal(t, "m2", buf[2].ID)
	assert.Equal(t, uint64(1700000002), buf[2].Timestamp)
	assert.Equal(t, entities.Message{}, buf[3])

	reqs := gw.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/esp32/messages", reqs[0].Path)
	assert.Equal(t, "key=I&limit=10", reqs[0].RawQuery)
}

func TestGetMessagesTruncatesToCapacity(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, messagesBody(MaxMessages+5))
	client, _ := newTestClient(gw.server.URL)

	buf := make([]entities.Message, MaxMessages+5)
	count := client.GetMessages(buf)
	require.Equal(t, MaxMessages, count)

	for i := 0; i < MaxMessages; i++ {
		assert.Equal(t, fmt.Sprintf("m%d", i), buf[i].ID)
	}
	for i := MaxMessages; i < len(buf); i++ {
		assert.Equal(t, entities.Message{}, buf[i], "slot %d written past capacity", i)
	}
}

func TestGetMessagesRespectsSmallBuffer(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, messagesBody(8))
	client, _ := newTestClient(gw.server.URL)

	backing := make([]entities.Message, 6)
	count := client.GetMessages(backing[:3])
	require.Equal(t, 3, count)
	assert.Equal(t, "m2", backing[2].ID)
	assert.Equal(t, entities.Message{}, backing[3])

	reqs := gw.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "key=I&limit=3", reqs[0].RawQuery)
}

func TestGetMessagesEmptyBufferMakesNoCall(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, messagesBody(2))
	client, _ := newTestClient(gw.server.URL)

	assert.Equal(t, 0, client.GetMessages(nil))
	assert.Empty(t, gw.recorded())
}

func TestGetMessagesMalformedJSON(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{"messages":[{"id":"m0"`)
	client, logs := newTestClient(gw.server.URL)

	sentinel := entities.Message{ID: "keep"}
	buf := []entities.Message{sentinel, sentinel}
	assert.Equal(t, 0, client.GetMessages(buf))
	assert.Equal(t, sentinel, buf[0])
	assert.Equal(t, sentinel, buf[1])
	assert.Contains(t, logs.String(), "JSON parse error")
}

func TestGetMessagesFailures(t *testing.T) {
	rejected := newFakeGateway(t, http.StatusForbidden, messagesBody(2))
	client, _ := newTestClient(rejected.server.URL)
	assert.Equal(t, 0, client.GetMessages(make([]entities.Message, 5)))

	client, _ = newTestClient(closedServerURL())
	assert.Equal(t, 0, client.GetMessages(make([]entities.Message, 5)))
}

func TestGetMessagesLenientFields(t *testing.T) {
	body := `{"messages":[
		{"id":42,"from":null,"text":"hi","time":"soon"},
		{"id":"m1","time":-5},
		{"id":"m2","time":1.7e9},
		"not an object",
		{"id":"m4","time":"1700000000"},
		{"id":"m5","time":" 1700000001 "},
		{"id":"m6","time":"-3"}
	]}`
	gw := newFakeGateway(t, http.StatusOK, body)
	client, _ := newTestClient(gw.server.URL)

	buf := make([]entities.Message, MaxMessages)
	require.Equal(t, 7, client.GetMessages(buf))

	assert.Equal(t, entities.Message{ID: "42", From: "", Text: "hi", Timestamp: 0}, buf[0])
	assert.Equal(t, entities.Message{ID: "m1"}, buf[1])
	assert.Equal(t, uint64(1700000000), buf[2].Timestamp)
	assert.Equal(t, entities.Message{}, buf[3])
	assert.Equal(t, uint64(1700000000), buf[4].Timestamp)
	assert.Equal(t, uint64(1700000001), buf[5].Timestamp)
	assert.Equal(t, uint64(0), buf[6].Timestamp)
}

func TestGetMessagesWithoutArray(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{"queue":[]}`)
	client, _ := newTestClient(gw.server.URL)

	assert.Equal(t, 0, client.GetMessages(make([]entities.Message, 3)))
}

func TestFetchMessages(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, messagesBody(20))
	client, _ := newTestClient(gw.server.URL)

	msgs, err := client.FetchMessages(50)
	require.NoError(t, err)
	assert.Len(t, msgs, MaxMessages)

	msgs, err = client.FetchMessages(0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	reqs := gw.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "key=I&limit=10", reqs[0].RawQuery)
	assert.Equal(t, "key=I&limit=1", reqs[1].RawQuery)
}

func TestFetchMessagesDecodeError(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `[`)
	client, _ := newTestClient(gw.server.URL)

	msgs, err := client.FetchMessages(5)
	assert.Nil(t, msgs)
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestOversizedResponseIsRejected(t *testing.T) {
	text := strings.Repeat("x", MaxResponseBytes)
	gw := newFakeGateway(t, http.StatusOK, `{"messages":[{"id":"m0","text":"`+text+`"}]}`)
	client, logs := newTestClient(gw.server.URL)

	assert.Equal(t, 0, client.GetMessages(make([]entities.Message, MaxMessages)))

	msgs, err := client.FetchMessages(MaxMessages)
	assert.Nil(t, msgs)
	assert.Equal(t, KindDecode, KindOf(err))
	assert.Contains(t, logs.String(), "Response body exceeds")
}

func TestResponseAtLimitIsAccepted(t *testing.T) {
	prefix := `{"messages":[{"id":"m0","text":"`
	suffix := `"}]}`
	text := strings.Repeat("x", MaxResponseBytes-len(prefix)-len(suffix))
	gw := newFakeGateway(t, http.StatusOK, prefix+text+suffix)
	client, _ := newTestClient(gw.server.URL)

	msgs, err := client.FetchMessages(1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].Text, len(text))
}

func TestRequestTimeoutIsApplied(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, `{}`)
	client, _ := newTestClient(gw.server.URL)

	assert.Equal(t, RequestTimeout, client.HttpClient.Timeout)
}

func TestPollIntervalSetter(t *testing.T) {
	client, _ := newTestClient("http://unused")

	assert.Equal(t, DefaultPollInterval*time.Millisecond, client.PollInterval())
	client.SetPollInterval(250)
	assert.Equal(t, 250*time.Millisecond, client.PollInterval())
}

func TestBeginLogsConfiguration(t *testing.T) {
	client, logs := newTestClient("https://gw.example/")
	client.Begin()
	client.Loop()

	out := logs.String()
	assert.Contains(t, out, "Library initialized")
	assert.Contains(t, out, `"api_url":"https://gw.example"`)
	assert.Contains(t, out, `"instance":"I"`)
	assert.Contains(t, out, Version)
}
