// Package influxdb provides clustered InfluxDB connectivity for graphios.
//
// It wraps the official influxdb-client-go v2 library. One library client is
// built per cluster member; requests rotate over the members and fail over
// on transport errors and 5xx responses.
//
// # Usage
//
//	client, err := influxdb.Connect(influxdb.Config{
//	    Servers:  []influxdb.Server{{Host: "db1", Port: 8086}, {Host: "db2", Port: 8086}},
//	    Username: "graphios",
//	    Password: "secret",
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WritePoints(ctx, "infra", points, 250)
//	var clientErr *influxdb.ClientError
//	if errors.As(err, &clientErr) && clientErr.DatabaseNotFound() {
//	    _ = client.CreateDatabase(ctx, "infra")
//	}
//
// # Wire Format
//
// Points are written through the /api/v2/write compatibility endpoint
// (bucket = database, precision = s) with HTTP basic auth. Databases are
// created with an InfluxQL CREATE DATABASE statement on /query.
//
// # Error Handling
//
// Every error is one of:
//   - *ClientError: the server rejected the request (4xx), never retried
//   - ErrTimeout: no member answered within the timeout
//   - ErrConnectionFailed: no member could be reached
//   - ErrWriteFailed: anything else, including 5xx from every member
//
// The client does not retry a request on the same member and never buffers
// points.
package influxdb
