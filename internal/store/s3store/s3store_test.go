package s3store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

// mockRoundTripper fakes the small S3 subset the store uses: GET returns the
// stored object or 404, PUT overwrites it.
type mockRoundTripper struct{ state map[string]mockObject }

type mockObject struct {
	body        []byte
	contentType string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	switch req.Method {
	case http.MethodGet:
		if obj, ok := m.state[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(obj.body)), Header: http.Header{
				"Content-Length": {strconv.Itoa(len(obj.body))},
				"Content-Type":   {obj.contentType},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
				"ETag":           {"\"etag\""},
			}}, nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok { // handle aws-chunked encoding
			body = dec
		}
		m.state[key] = mockObject{body: body, contentType: req.Header.Get("Content-Type")}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {"\"etag\""}}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

// decodeChunked decodes a minimal single-chunk aws-chunked payload:
// <hex>\r\n<body>\r\n0\r\n...
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	n, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || n <= 0 || int64(len(parts[1])) != n || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockStore(t *testing.T) (*Store, *mockRoundTripper) {
	t.Helper()
	rt := &mockRoundTripper{state: make(map[string]mockObject)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(defaultRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
	})
	return &Store{client: client, bucket: "gas-data", key: defaultKey}, rt
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), types.S3Config{})
	require.ErrorIs(t, err, types.ErrS3BucketEmpty)
}

func TestNewDefaultsKey(t *testing.T) {
	s, err := New(context.Background(), types.S3Config{
		Bucket:          "gas-data",
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	require.NoError(t, err)
	assert.Equal(t, defaultKey, s.key)
	assert.Equal(t, "gas-data", s.bucket)
}

func TestReadAllMissingObject(t *testing.T) {
	s, _ := newMockStore(t)
	_, err := s.ReadAll(context.Background())
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestWriteAllReadAllRoundTrip(t *testing.T) {
	s, _ := newMockStore(t)
	ctx := context.Background()

	lastFill := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	lastTest := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	nextDue := time.Date(2028, 3, 30, 0, 0, 0, 0, time.UTC)
	table := types.CylinderTable{
		{
			CylinderID:   "HYD-1001",
			CapacityKg:   14,
			FillPercent:  100,
			Status:       types.StatusFull,
			LocationPIN:  "500033",
			CustomerName: "Leo Gas, Hyderabad",
			LastFillDate: &lastFill,
			LastTestDate: &lastTest,
			NextTestDue:  &nextDue,
		},
		{CylinderID: "HYD-1002", CapacityKg: 5, Status: types.StatusEmpty, LocationPIN: "000081"},
	}
	require.NoError(t, s.WriteAll(ctx, table))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "HYD-1001", got[0].CylinderID)
	assert.Equal(t, 14, got[0].CapacityKg)
	assert.Equal(t, "Leo Gas, Hyderabad", got[0].CustomerName)
	require.NotNil(t, got[0].NextTestDue)
	assert.Equal(t, nextDue, *got[0].NextTestDue)
	assert.Equal(t, "000081", got[1].LocationPIN, "leading zeros survive the text cells")
	assert.Nil(t, got[1].LastFillDate)
}

func TestWriteAllReplacesObject(t *testing.T) {
	s, _ := newMockStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAll(ctx, types.CylinderTable{
		{CylinderID: "HYD-1001", CapacityKg: 14, Status: types.StatusFull, LocationPIN: "500033"},
		{CylinderID: "HYD-1002", CapacityKg: 5, Status: types.StatusEmpty, LocationPIN: "500081"},
	}))
	require.NoError(t, s.WriteAll(ctx, types.CylinderTable{
		{CylinderID: "HYD-2001", CapacityKg: 19, Status: types.StatusActive, LocationPIN: "110001"},
	}))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HYD-2001", got[0].CylinderID)
}

func TestReadAllGarbledObject(t *testing.T) {
	s, rt := newMockStore(t)
	rt.state[defaultKey] = mockObject{body: []byte("cylinder_id\n\"unclosed"), contentType: contentTypeCSV}

	_, err := s.ReadAll(context.Background())
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestWriteAllEmptyTable(t *testing.T) {
	s, rt := newMockStore(t)
	require.NoError(t, s.WriteAll(context.Background(), types.CylinderTable{}))

	obj, ok := rt.state[defaultKey]
	require.True(t, ok)
	assert.Equal(t, contentTypeCSV, obj.contentType)
	assert.Contains(t, string(obj.body), "Cylinder_ID", "header row present even for an empty table")
}
