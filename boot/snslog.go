package boot

import (
	"fmt"

	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/samuel/go-metrics/metrics"

	"github.com/meetbrief/backend/libs/conc"
	"github.com/meetbrief/backend/libs/golog"
	"github.com/meetbrief/backend/libs/ptr"
	"github.com/meetbrief/backend/libs/ratelimit"
)

type snsLogHandler struct {
	sns         snsiface.SNSAPI
	topic       string
	subject     string
	next        golog.Handler
	rateLimiter ratelimit.KeyedRateLimiter

	statPublished   *metrics.Counter
	statRateLimited *metrics.Counter
	statFailed      *metrics.Counter
}

// SNSLogHandler returns a log handler that publishes entries of level ERR or
// worse to an SNS topic, passing every entry through to next. Publishing is
// rate limited per source location to avoid flooding the topic when an error
// repeats in a tight loop.
func SNSLogHandler(snsCli snsiface.SNSAPI, topic, subject string, next golog.Handler, rateLimiter ratelimit.KeyedRateLimiter, metricsRegistry metrics.Registry) golog.Handler {
	h := &snsLogHandler{
		sns:             snsCli,
		topic:           topic,
		subject:         subject,
		next:            next,
		rateLimiter:     rateLimiter,
		statPublished:   metrics.NewCounter(),
		statRateLimited: metrics.NewCounter(),
		statFailed:      metrics.NewCounter(),
	}
	if metricsRegistry != nil {
		metricsRegistry.Add("published", h.statPublished)
		metricsRegistry.Add("ratelimited", h.statRateLimited)
		metricsRegistry.Add("failed", h.statFailed)
	}
	return h
}

func (h *snsLogHandler) Log(e *golog.Entry) error {
	if e.Lvl <= golog.ERR {
		key := e.Src
		if key == "" {
			key = e.Msg
		}
		ok, err := h.rateLimiter.Check(key, 1)
		if err != nil {
			// Rate limiter failure shouldn't stop the notification.
			ok = true
		}
		if ok {
			msg := fmt.Sprintf("[%s] %s", e.Lvl, e.Msg)
			conc.Go(func() {
				_, err := h.sns.Publish(&sns.PublishInput{
					Message:  ptr.String(msg),
					Subject:  ptr.String(h.subject),
					TopicArn: ptr.String(h.topic),
				})
				if err != nil {
					h.statFailed.Inc(1)
					// Can't log through golog here or we'd loop.
					fmt.Printf("boot: failed to publish log entry to SNS: %s\n", err)
					return
				}
				h.statPublished.Inc(1)
			})
		} else {
			h.statRateLimited.Inc(1)
		}
	}
	return h.next.Log(e)
}
