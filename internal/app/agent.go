package app

import (
	"context"
	"errors"
	"time"

	"github.com/bft-labs/headtrack/internal/domain"
	"github.com/bft-labs/headtrack/internal/ports"
	"github.com/bft-labs/headtrack/pkg/hmd"
	"github.com/bft-labs/headtrack/pkg/log"
)

// flushTimeout bounds the final send after the run context is canceled.
const flushTimeout = 5 * time.Second

// AgentConfig contains configuration for the sampling loop.
type AgentConfig struct {
	SampleInterval time.Duration
	SendInterval   time.Duration
	HardInterval   time.Duration
	MaxBatchFrames int

	// Once sends a single full batch and returns.
	Once bool

	// Metadata for send operations
	Driver     string
	Hostname   string
	OSArch     string
	AuthKey    string
	ServiceURL string
}

// Agent samples a pose source and streams the frames to a sender.
type Agent struct {
	config    AgentConfig
	source    ports.PoseSource
	sender    ports.PoseSender
	stateRepo ports.StateRepository
	logger    log.Logger
	batcher   *Batcher
	emitter   SendEventEmitter
	backoff   *backoff
}

// SendEventEmitter is called on send success or failure.
type SendEventEmitter interface {
	OnSendSuccess(frameCount int, lastSeq uint64, duration time.Duration)
	OnSendError(err error, frameCount int, retryable bool)
}

// NewAgent creates a new agent with the given dependencies. emitter may be nil.
func NewAgent(
	config AgentConfig,
	source ports.PoseSource,
	sender ports.PoseSender,
	stateRepo ports.StateRepository,
	logger log.Logger,
	emitter SendEventEmitter,
) *Agent {
	return &Agent{
		config:    config,
		source:    source,
		sender:    sender,
		stateRepo: stateRepo,
		logger:    log.OrNoop(logger),
		batcher:   NewBatcher(config.MaxBatchFrames, config.SendInterval, config.HardInterval),
		emitter:   emitter,
		backoff:   newBackoff(DefaultBackoffInitial, DefaultBackoffMax),
	}
}

// Run samples the source every SampleInterval until ctx is canceled, the
// device goes away, or (in Once mode) one full batch has been delivered.
// Pending frames are flushed before returning.
func (a *Agent) Run(ctx context.Context) error {
	state, err := a.stateRepo.Load(ctx)
	if err != nil {
		a.logger.Error("failed to load state, starting from seq 0", log.Err(err))
		state = domain.State{}
	}
	seq := state.LastSeq

	ticker := time.NewTicker(a.config.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.flush(ctx, &state)
			return ctx.Err()
		case <-ticker.C:
		}

		snap, err := a.source.Frame()
		if err != nil {
			if errors.Is(err, hmd.ErrNoActiveDevice) {
				a.logger.Error("device gone, stopping stream", log.Err(err))
				a.flush(ctx, &state)
				return err
			}
			a.logger.Warn("sample failed", log.Err(err))
			continue
		}

		seq++
		full := a.batcher.Add(domain.Frame{
			Seq:    seq,
			Device: a.source.DeviceIndex(),
			Pose:   snap,
		})

		if full || (!a.config.Once && a.batcher.ShouldSend()) {
			sent := a.trySend(ctx, &state)
			if sent && a.config.Once {
				return nil
			}
		}
	}
}

// trySend sends the current batch once. On failure the batch is kept for
// the next attempt and the agent backs off.
func (a *Agent) trySend(ctx context.Context, state *domain.State) bool {
	if err := a.send(ctx, state); err != nil {
		batch := a.batcher.Batch()
		a.logger.Error("send failed",
			log.Err(err),
			log.Int("frames", batch.Size()),
			log.Duration("backoff", a.backoff.Current()),
		)
		if a.emitter != nil {
			a.emitter.OnSendError(err, batch.Size(), true)
		}
		_ = a.backoff.Wait(ctx)
		return false
	}
	a.backoff.Reset()
	return true
}

// send delivers the current batch and persists the new state.
func (a *Agent) send(ctx context.Context, state *domain.State) error {
	batch := a.batcher.Batch()
	if batch.Empty() {
		return nil
	}

	start := time.Now()
	if err := a.sender.Send(ctx, batch, a.metadata()); err != nil {
		return err
	}
	duration := time.Since(start)

	last := batch.LastFrame()
	a.logger.Info("sent batch",
		log.Int("frames", batch.Size()),
		log.Int("dropped", batch.Dropped),
		log.Uint64("last_seq", last.Seq),
		log.Duration("duration", duration),
	)
	if a.emitter != nil {
		a.emitter.OnSendSuccess(batch.Size(), last.Seq, duration)
	}

	state.UpdateAfterSend(last.Seq, batch.Size(), time.Now())
	if err := a.stateRepo.Save(ctx, *state); err != nil {
		a.logger.Error("failed to save state", log.Err(err))
	}

	a.batcher.Reset()
	return nil
}

// flush makes one last attempt to deliver pending frames. It runs on a
// context detached from the canceled run context.
func (a *Agent) flush(ctx context.Context, state *domain.State) {
	if !a.batcher.HasPending() {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	if err := a.send(fctx, state); err != nil {
		a.logger.Error("final flush failed",
			log.Err(err),
			log.Int("frames", a.batcher.Batch().Size()),
		)
		if a.emitter != nil {
			a.emitter.OnSendError(err, a.batcher.Batch().Size(), false)
		}
	}
}

func (a *Agent) metadata() ports.SendMetadata {
	return ports.SendMetadata{
		Device:     a.source.DeviceIndex(),
		Driver:     a.config.Driver,
		Hostname:   a.config.Hostname,
		OSArch:     a.config.OSArch,
		AuthKey:    a.config.AuthKey,
		ServiceURL: a.config.ServiceURL,
	}
}
