package influxdb

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianlzt/graphios/internal/backend"
	"github.com/adrianlzt/graphios/internal/infrastructure/config"
	"github.com/adrianlzt/graphios/internal/infrastructure/influxdb/influxdbtest"
	"github.com/adrianlzt/graphios/internal/infrastructure/logging"
	"github.com/adrianlzt/graphios/internal/perfdata"
)

func diskRecord(project string) *perfdata.Record {
	return &perfdata.Record{
		Timet:        1700000000,
		HostName:     "web1",
		ServiceDesc:  "check_disk",
		ServiceState: 0,
		Project:      project,
		Metrics: []perfdata.Metric{
			{Label: "used", Value: "42.5", UOM: "%", Crit: "90"},
		},
	}
}

// newTestBackend returns a backend pointed at the given cluster members, in
// order, and a buffer collecting its logs.
func newTestBackend(t *testing.T, members ...*influxdbtest.Server) (*Backend, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := logging.NewWithWriter(&logs, config.LoggingConfig{Level: "debug", Format: "text"}, "test")

	addrs := make([]string, len(members))
	for i, m := range members {
		addrs[i] = m.Member().String()
	}
	cfg, err := ParseConfig(backend.Options{
		OptServers:  strings.Join(addrs, ","),
		OptUser:     "graphios",
		OptPassword: "secret",
	})
	require.NoError(t, err)
	cfg.Timeout = 200 * time.Millisecond

	b, err := NewFromConfig(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	return b, &logs
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(backend.Options{OptUser: "graphios"}, logging.Discard())
	assert.ErrorIs(t, err, backend.ErrMissingOption)
}

func TestBackend_Name(t *testing.T) {
	b, _ := newTestBackend(t, influxdbtest.NewServer(t))
	assert.Equal(t, "influxdb", b.Name())
}

func TestSend_WritesPoint(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra")
	srv.RequireAuth("graphios", "secret")
	b, _ := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("infra")})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{
		`check_disk,host=web1,project=infra,status=0,used_uom=% used=42.5,used_critical="90" 1700000000`,
	}, srv.Points("infra"))
}

func TestSend_GroupsByProject(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra", "apps", perfdata.DefaultProject)
	b, _ := newTestBackend(t, srv)

	records := []*perfdata.Record{diskRecord("infra"), diskRecord("apps"), diskRecord(""), diskRecord("infra")}
	n, err := b.Send(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, srv.Points("infra"), 2)
	assert.Len(t, srv.Points("apps"), 1)
	assert.Len(t, srv.Points("NA"), 1)

	// One request per project, in sorted project order.
	writes := srv.Writes()
	require.Len(t, writes, 3)
	assert.Equal(t, []string{"NA", "apps", "infra"}, []string{writes[0].Database, writes[1].Database, writes[2].Database})
}

func TestSend_ExtraTags(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra")
	b, _ := newTestBackend(t, srv)
	b.cfg.ExtraTags = map[string]string{"env": "prod", "host": "override"}

	_, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("infra")})
	require.NoError(t, err)

	lines := srv.Points("infra")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "check_disk,env=prod,host=override,project=infra,"), lines[0])
}

func TestSend_BatchSize(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra")
	b, _ := newTestBackend(t, srv)
	b.cfg.MaxMetrics = 2

	records := make([]*perfdata.Record, 5)
	for i := range records {
		records[i] = diskRecord("infra")
		records[i].Timet += int64(i)
	}

	n, err := b.Send(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, srv.Writes(), 3)
}

func TestSend_DatabaseNotFound(t *testing.T) {
	srv := influxdbtest.NewServer(t)
	b, logs := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("newproj")})

	require.NoError(t, err)
	assert.Equal(t, 1, n, "creating a missing database is not a failure")
	assert.Equal(t, []string{`CREATE DATABASE "newproj"`}, srv.Queries())
	assert.True(t, srv.HasDatabase("newproj"))
	assert.Equal(t, 1, srv.Requests(), "the batch must not be resubmitted")
	assert.Empty(t, srv.Points("newproj"))
	assert.Contains(t, logs.String(), "database does not exist, creating")

	// The next call for the same project succeeds.
	n, err = b.Send(context.Background(), []*perfdata.Record{diskRecord("newproj")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, srv.Points("newproj"), 1)
}

func TestSend_TimeoutZeroesCount(t *testing.T) {
	srv := influxdbtest.NewServer(t, "apps", "infra")
	b, logs := newTestBackend(t, srv)

	// A first call succeeds; then every write stalls.
	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("apps")})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	srv.SetDelay(2 * time.Second)
	n, err = b.Send(context.Background(), []*perfdata.Record{diskRecord("apps"), diskRecord("infra")})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, logs.String(), "level=CRITICAL")
	assert.Contains(t, logs.String(), "timeout connecting to InfluxDB")
}

func TestSend_TimeoutContinuesWithLaterProjects(t *testing.T) {
	srv := influxdbtest.NewServer(t, "apps", "infra")
	srv.DelayDatabase("apps", 2*time.Second)
	b, logs := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("apps"), diskRecord("infra")})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, srv.Requests(), "infra must still be attempted")
	assert.Len(t, srv.Points("infra"), 1)
	assert.Contains(t, logs.String(), "timeout connecting to InfluxDB")
}

func TestSend_SlowMemberFailsOver(t *testing.T) {
	slow := influxdbtest.NewServer(t, "infra")
	slow.SetDelay(2 * time.Second)
	fast := influxdbtest.NewServer(t, "infra")
	b, logs := newTestBackend(t, slow, fast)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("infra")})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, slow.Requests())
	assert.Len(t, fast.Points("infra"), 1)
	assert.NotContains(t, logs.String(), "level=CRITICAL")
}

func TestSend_EarlierProjectFailureDoesNotStopLaterOnes(t *testing.T) {
	srv := influxdbtest.NewServer(t, "apps", "infra")
	srv.FailDatabase("apps", http.StatusBadRequest)
	b, logs := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("infra"), diskRecord("apps")})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, srv.Points("apps"))
	assert.Len(t, srv.Points("infra"), 1, "later projects are still written")
	assert.Contains(t, logs.String(), "error writing points to InfluxDB")
}

func TestSend_PartialFailureZeroesWholeCall(t *testing.T) {
	srv := influxdbtest.NewServer(t, "apps", "infra")
	srv.FailDatabase("infra", http.StatusBadRequest)
	b, logs := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("apps"), diskRecord("infra")})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, srv.Points("apps"), 1, "earlier projects stay written")
	assert.Empty(t, srv.Queries(), "only database not found triggers creation")
	assert.Contains(t, logs.String(), "error writing points to InfluxDB")
}

func TestSend_ServerErrorZeroesCount(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra")
	srv.SetFailStatus(http.StatusServiceUnavailable)
	b, logs := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("infra")})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, logs.String(), "error writing points to InfluxDB")
}

func TestSend_ConnectionFailedZeroesCount(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra")
	b, logs := newTestBackend(t, srv)
	srv.Close()

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("infra")})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, logs.String(), "error connecting to InfluxDB")
}

func TestSend_CreateDatabaseFailureOnlyLogged(t *testing.T) {
	srv := influxdbtest.NewServer(t)
	srv.SetQueryFailStatus(http.StatusForbidden)
	b, logs := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("newproj")})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, srv.HasDatabase("newproj"))
	assert.Contains(t, logs.String(), "error creating database")
}

func TestSend_CreateDatabaseStatementErrorLogged(t *testing.T) {
	srv := influxdbtest.NewServer(t)
	srv.SetQueryResultError("error authorizing query: graphios not authorized to execute statement 'CREATE DATABASE newproj', requires admin privilege")
	b, logs := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), []*perfdata.Record{diskRecord("newproj")})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, srv.HasDatabase("newproj"))
	assert.Contains(t, logs.String(), "level=CRITICAL")
	assert.Contains(t, logs.String(), "error creating database")
	assert.NotContains(t, logs.String(), "database created")
}

func TestNew_UnreachableClusterOnlyWarns(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra")
	srv.Close()

	b, logs := newTestBackend(t, srv)

	assert.NotNil(t, b)
	assert.Contains(t, logs.String(), "no InfluxDB server answered ping")
}

func TestSend_Cancelled(t *testing.T) {
	srv := influxdbtest.NewServer(t, "infra")
	b, _ := newTestBackend(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := b.Send(ctx, []*perfdata.Record{diskRecord("infra")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestSend_Empty(t *testing.T) {
	srv := influxdbtest.NewServer(t)
	b, _ := newTestBackend(t, srv)

	n, err := b.Send(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, srv.Requests())
}
