// Package influx writes pose frames to InfluxDB 2.x as time-series points.
package influx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/internal/ports"
	"github.com/bft-labs/headtrack/pkg/log"
)

// DefaultMeasurement is the measurement name for pose points.
const DefaultMeasurement = "head_pose"

const defaultPingTimeout = 5 * time.Second

// ErrConnectionFailed is returned when the server is unreachable or unhealthy.
var ErrConnectionFailed = errors.New("influx: connection failed")

// Config identifies the target bucket.
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// pointWriter is satisfied by api.WriteAPIBlocking.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// PoseSender implements ports.PoseSender with the blocking write API, so a
// returned nil means the points were accepted.
type PoseSender struct {
	client      influxdb2.Client
	writer      pointWriter
	measurement string
	logger      log.Logger
}

// Connect creates a client and verifies the server answers a ping.
func Connect(ctx context.Context, cfg Config, logger log.Logger) (*PoseSender, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("influx: url, org and bucket are required")
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pctx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	healthy, err := client.Ping(pctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	s := newPoseSender(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Measurement, logger)
	s.client = client
	return s, nil
}

func newPoseSender(writer pointWriter, measurement string, logger log.Logger) *PoseSender {
	if measurement == "" {
		measurement = DefaultMeasurement
	}
	return &PoseSender{writer: writer, measurement: measurement, logger: log.OrNoop(logger)}
}

// Send writes one point per frame, timestamped with the sample time.
func (s *PoseSender) Send(ctx context.Context, batch *domain.Batch, metadata ports.SendMetadata) error {
	if batch.Empty() {
		return nil
	}

	points := make([]*write.Point, 0, batch.Size())
	for _, f := range batch.Frames {
		points = append(points, s.point(f, metadata))
	}

	if err := s.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	s.logger.Debug("poses written", log.String("measurement", s.measurement), log.Int("points", len(points)))
	return nil
}

func (s *PoseSender) point(f domain.Frame, md ports.SendMetadata) *write.Point {
	tags := map[string]string{
		"device": strconv.Itoa(f.Device),
	}
	if md.Driver != "" {
		tags["driver"] = md.Driver
	}
	if md.Hostname != "" {
		tags["host"] = md.Hostname
	}

	p := f.Pose.PositionArray()
	q := f.Pose.OrientationArray()
	fields := map[string]interface{}{
		"seq": int64(f.Seq),
		"px":  p[0],
		"py":  p[1],
		"pz":  p[2],
		"qw":  q[0],
		"qx":  q[1],
		"qy":  q[2],
		"qz":  q[3],
	}
	return write.NewPoint(s.measurement, tags, fields, f.Pose.SampledAt)
}

// Close releases the client.
func (s *PoseSender) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
