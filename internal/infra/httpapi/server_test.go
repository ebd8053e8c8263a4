package httpapi_test

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"geoguard/internal/app"
	"geoguard/internal/infra/httpapi"
	"geoguard/internal/infra/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type recordingSessions struct {
	got app.SessionRequest
}

func (r *recordingSessions) Handle(_ context.Context, req app.SessionRequest) string {
	r.got = req
	return "CON Welcome to GeoGuard Kenya\n1. Report Sign (Asili Smart)\n2. Get Weather Forecast"
}

type recordingChat struct {
	got       app.InboundMessage
	mediaData []byte
	mediaType string
	mediaErr  error
}

func (r *recordingChat) Reply(ctx context.Context, msg app.InboundMessage) string {
	r.got = msg
	if msg.Media != nil {
		r.mediaData, r.mediaType, r.mediaErr = msg.Media(ctx)
		return "analyzed"
	}
	return "hello <friend> & welcome"
}

type fakeMedia struct {
	url string
	err error
}

func (f *fakeMedia) Fetch(_ context.Context, u string) ([]byte, string, error) {
	f.url = u
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("img"), "application/octet-stream", nil
}

func newTestServer(readyErr error, handlers ...httpapi.RouteRegistrar) *httpapi.Server {
	return httpapi.NewServer(":0", &mockReadiness{err: readyErr}, logger.Discard(), handlers...)
}

func postForm(srv http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newTestServer(fmt.Errorf("database not reachable")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "database not reachable", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUSSDCallback(t *testing.T) {
	sessions := &recordingSessions{}
	srv := newTestServer(nil, httpapi.NewUSSDHandler(sessions))

	rec := postForm(srv, "/ussd", url.Values{
		"sessionId":   {"ATUid_1"},
		"serviceCode": {"*384*123#"},
		"phoneNumber": {"+254711000111"},
		"text":        {"2*1"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "CON "))
	assert.Equal(t, app.SessionRequest{SessionID: "ATUid_1", ServiceCode: "*384*123#", PhoneNumber: "+254711000111", Text: "2*1"}, sessions.got)
}

func TestUSSDCallback_EmptyText(t *testing.T) {
	sessions := &recordingSessions{}
	srv := newTestServer(nil, httpapi.NewUSSDHandler(sessions))

	rec := postForm(srv, "/ussd", url.Values{"sessionId": {"s"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", sessions.got.Text)
}

func TestWhatsAppTextMessage(t *testing.T) {
	chat := &recordingChat{}
	srv := newTestServer(nil, httpapi.NewWhatsAppHandler(chat, &fakeMedia{}, logger.Discard()))

	rec := postForm(srv, "/whatsapp", url.Values{"Body": {"hello"}, "From": {"whatsapp:+254700000001"}, "NumMedia": {"0"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<Response><Message>"), rec.Body.String())
	assert.Nil(t, chat.got.Media)
	assert.Equal(t, "whatsapp:+254700000001", chat.got.Sender)

	var resp struct {
		XMLName xml.Name `xml:"Response"`
		Message string   `xml:"Message"`
	}
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello <friend> & welcome", resp.Message)
	assert.Contains(t, rec.Body.String(), "&lt;friend&gt; &amp; welcome")
}

func TestWhatsAppMediaMessage(t *testing.T) {
	chat := &recordingChat{}
	media := &fakeMedia{}
	srv := newTestServer(nil, httpapi.NewWhatsAppHandler(chat, media, logger.Discard()))

	rec := postForm(srv, "/whatsapp", url.Values{
		"From":              {"whatsapp:+254700000001"},
		"NumMedia":          {"1"},
		"MediaUrl0":         {"https://api.twilio.com/media/ME1"},
		"MediaContentType0": {"image/png"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, chat.got.Media)
	require.NoError(t, chat.mediaErr)
	assert.Equal(t, "https://api.twilio.com/media/ME1", media.url)
	assert.Equal(t, "image/png", chat.mediaType)
	assert.Equal(t, []byte("img"), chat.mediaData)
}

func TestWhatsAppMediaFetchErrorReachesChat(t *testing.T) {
	chat := &recordingChat{}
	srv := newTestServer(nil, httpapi.NewWhatsAppHandler(chat, &fakeMedia{err: errors.New("401")}, logger.Discard()))

	rec := postForm(srv, "/whatsapp", url.Values{"NumMedia": {"1"}, "MediaUrl0": {"https://x/y"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Error(t, chat.mediaErr)
}
