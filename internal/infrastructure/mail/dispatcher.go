package mail

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/claritykit/claritykit-backend/internal/api/metrics"
	"github.com/claritykit/claritykit-backend/internal/pkg/config"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

type message struct {
	recipient string
	subject   string
	template  string
	data      any
}

// Dispatcher delivers notification emails asynchronously on a fixed set of
// workers, sharded by recipient so mail to one address keeps its order.
// Delivery failures are logged, never propagated; enqueueing never blocks
// the caller.
type Dispatcher struct {
	workers []chan message
	sender  Sender
	cfg     config.AuthConfig
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, cfg config.AuthConfig, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan message, numWorkers),
		sender:  sender,
		cfg:     cfg,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// SendAccountVerification enqueues the signup/resend verification email.
func (d *Dispatcher) SendAccountVerification(email, firstName, link string) {
	d.enqueue(message{
		recipient: email,
		subject:   "Verify Your ClarityKit Account",
		template:  templateVerifyAccount,
		data: verifyAccountData{
			FirstName:        firstName,
			VerificationLink: link,
			ExpireMinutes:    d.cfg.VerifyTokenExpireMinutes,
		},
	})
}

// SendPasswordReset enqueues the forget-password OTP email.
func (d *Dispatcher) SendPasswordReset(email, firstName string, otp int) {
	d.enqueue(message{
		recipient: email,
		subject:   "Password Reset Request",
		template:  templatePasswordReset,
		data: passwordResetData{
			FirstName:     firstName,
			OTP:           otp,
			ExpireMinutes: d.cfg.ResetOTPExpireMinutes,
		},
	})
}

func (d *Dispatcher) enqueue(m message) {
	select {
	case d.workers[d.shardIndex(m.recipient)] <- m:
	default:
		// A full buffer must not block the parent operation.
		d.log.Warn().Str("recipient", m.recipient).Str("template", m.template).Msg("mail queue full, message dropped")
		metrics.EmailsTotal.WithLabelValues(templateLabel(m.template), "error").Inc()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, m)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, m message) {
	label := templateLabel(m.template)

	body, err := render(m.template, m.data)
	if err != nil {
		d.log.Error().Err(err).Str("template", m.template).Msg("email render failed")
		metrics.EmailsTotal.WithLabelValues(label, "error").Inc()
		return
	}

	if err := d.sender.Send(ctx, m.recipient, m.subject, body); err != nil {
		d.log.Error().Err(err).
			Str("recipient", m.recipient).
			Int("worker_id", workerID).
			Msg("email delivery failed")
		metrics.EmailsTotal.WithLabelValues(label, "error").Inc()
		return
	}
	metrics.EmailsTotal.WithLabelValues(label, "sent").Inc()
}

func templateLabel(name string) string {
	switch name {
	case templateVerifyAccount:
		return "verify_account"
	case templatePasswordReset:
		return "password_reset"
	default:
		return "unknown"
	}
}
