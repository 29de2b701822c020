package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/james-see/traktor2rekordbox/pkg/analysis"
	"github.com/james-see/traktor2rekordbox/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nmlDoc = `<?xml version="1.0" encoding="UTF-8"?>
<NML VERSION="19">
  <COLLECTION ENTRIES="1">
    <ENTRY TITLE="Test" ARTIST="Artist">
      <LOCATION DIR="/:Music/:" FILE="test.mp3" VOLUME="Macintosh HD"/>
      <TEMPO BPM="128.000000"/>
      <CUE_V2 NAME="Drop" TYPE="0" START="1000" LEN="0" HOTCUE="0"/>
    </ENTRY>
  </COLLECTION>
</NML>`

const rekordboxDoc = `<?xml version="1.0" encoding="UTF-8"?>
<DJ_PLAYLISTS Version="1.0.0">
  <COLLECTION Entries="1">
    <TRACK Name="Test" Artist="Artist" Location="file://localhost/Music/test.mp3"/>
  </COLLECTION>
</DJ_PLAYLISTS>`

func setupTestServer() http.Handler {
	gin.SetMode(gin.TestMode)
	return NewServer(converter.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}).Router()
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	router := setupTestServer()

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, "traktor2rekordbox", resp["service"])
	}
}

func TestListFormats(t *testing.T) {
	router := setupTestServer()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"nml", "rekordbox"}, resp["formats"])
	assert.Equal(t, converter.GetSupportedConversions(), resp["conversions"])
}

func TestConvertNMLToRekordbox(t *testing.T) {
	router := setupTestServer()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/nml2xml", "collection.nml", nmlDoc))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=collection.xml", w.Header().Get("Content-Disposition"))

	doc, err := converter.ParseRekordbox(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Collection.Tracks, 1)
	assert.Equal(t, "Test", doc.Collection.Tracks[0].Name)
}

func TestConvertRekordboxToNML(t *testing.T) {
	router := setupTestServer()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/xml2nml", "rekordbox.xml", rekordboxDoc))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=rekordbox.nml", w.Header().Get("Content-Disposition"))

	doc, err := converter.ParseNML(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, doc.Collection.Entry, 1)
	assert.Equal(t, "test.mp3", doc.Collection.Entry[0].Location.File)
}

func TestConvertErrors(t *testing.T) {
	router := setupTestServer()

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/convert/nml2xml", strings.NewReader(""))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed document", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/nml2xml", "bad.nml", "<NML><COLLECTION>"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("wrong format", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/xml2nml", "collection.nml", nmlDoc))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestAnalyze(t *testing.T) {
	router := setupTestServer()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/analyze", "collection.nml", nmlDoc))

	require.Equal(t, http.StatusOK, w.Code)
	var report analysis.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, converter.FormatNML, report.Format)
	require.Len(t, report.Tracks, 1)
	assert.True(t, report.Tracks[0].HasHotcues)
	assert.Equal(t, 1.0, report.Tracks[0].Cues[0].Start)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestServer()
	router.ServeHTTP(httptest.NewRecorder(), uploadRequest(t, "/api/v1/convert/nml2xml", "collection.nml", nmlDoc))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "traktor2rekordbox_conversions_total")
	assert.Contains(t, w.Body.String(), "traktor2rekordbox_tracks_converted_total")
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestServer()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/formats", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServerDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(converter.Options{})

	assert.NotNil(t, s.logger)
	assert.Equal(t, converter.DefaultPlaylistName, s.opts.PlaylistName)
	assert.Equal(t, converter.DefaultProgram, s.opts.Program)
}

func TestConvertQuotesFilename(t *testing.T) {
	router := setupTestServer()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/api/v1/convert/nml2xml", "my set; final.nml", nmlDoc))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="my set; final.xml"`, w.Header().Get("Content-Disposition"))

	_, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "my set; final.xml", params["filename"])
}
