package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/seidelmaycon/game-api/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "drop"
	}
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Worker turns queued EmailJobs into sent email.
type Worker struct {
	Sender      Sender
	AppName     string
	SendTimeout time.Duration
	Logger      *logrus.Logger
}

var errEmptyJob = errors.New("email job has no recipient or content")

// Handle processes one queue message. Bad payloads and render failures are
// dropped; send failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.log().WithError(err).Warn("bad email job payload")
		return Drop
	}

	subject, text, html, err := w.render(&job)
	if err != nil {
		w.log().WithError(err).WithField("template", job.Template).Warn("render email failed")
		return Drop
	}

	timeout := w.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		w.log().WithError(err).WithField("template", job.Template).Error("send email failed")
		return Requeue
	}
	return Ack
}

func (w *Worker) render(job *EmailJob) (subject, text, html string, err error) {
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", errEmptyJob
	}
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", errEmptyJob
		}
		return job.Subject, job.Text, job.HTML, nil
	}

	data := make(map[string]any, len(job.Data)+2)
	for k, v := range job.Data {
		data[k] = v
	}
	if _, ok := data["AppName"]; !ok && w.AppName != "" {
		data["AppName"] = w.AppName
	}
	if _, ok := data["Email"]; !ok {
		data["Email"] = job.To
	}
	subject, text, html, err = mailtpl.Render(job.Template, data)
	if err != nil {
		return "", "", "", fmt.Errorf("template %s: %w", job.Template, err)
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}

func (w *Worker) log() *logrus.Logger {
	if w.Logger == nil {
		return logrus.StandardLogger()
	}
	return w.Logger
}
