package sessionkit

import (
	"context"
	"fmt"
	"strings"
)

// CheckForm is the gating decision for any public form submission,
// including login. Stages run in order and short-circuit:
//
//  1. sliding-window rate limit keyed by the client fingerprint — denial
//     carries the computed reset time;
//  2. honeypot — any non-empty decoy value is spam, nothing else runs;
//  3. per-field sanitize-and-validate;
//  4. required-field presence on the sanitized values.
//
// Sanitized values are returned even when invalid; callers own the
// decision to block.
func (c *Client) CheckForm(ctx context.Context, sub FormSubmission) FormResult {
	key := FingerprintFromContext(ctx).Key()
	limit := c.formLimiter.Check(key)
	if !limit.Allowed {
		rlErr := &RateLimitError{ResetAt: limit.ResetAt}
		c.observe(ctx, EventFormRateLimited, MetricFormRateLimited, false, rlErr, map[string]string{
			"key": key,
		})
		return FormResult{
			Valid:   false,
			Errors:  []string{fmt.Sprintf("too many submissions, retry after %s", limit.ResetAt.Format("15:04:05"))},
			Failure: rlErr,
		}
	}

	if strings.TrimSpace(sub.Honeypot) != "" {
		c.observe(ctx, EventFormSpam, MetricFormSpam, false, ErrSpamDetected, map[string]string{
			"key": key,
		})
		return FormResult{
			Valid:   false,
			Errors:  []string{"submission rejected"},
			Failure: ErrSpamDetected,
		}
	}

	sanitized := make(map[string]string, len(sub.Fields))
	fieldErrs := map[string][]string{}
	for name, value := range sub.Fields {
		res := c.sanitizer.Clean(name, value)
		sanitized[name] = res.Value
		if len(res.Errors) > 0 {
			fieldErrs[name] = append(fieldErrs[name], res.Errors...)
		}
	}

	for _, name := range sub.Required {
		if strings.TrimSpace(sanitized[name]) == "" {
			fieldErrs[name] = append(fieldErrs[name], fmt.Sprintf("%s is required", name))
		}
	}

	if len(fieldErrs) > 0 {
		var flat []string
		for _, msgs := range fieldErrs {
			flat = append(flat, msgs...)
		}
		vErr := &ValidationError{Fields: fieldErrs}
		c.observe(ctx, EventFormRejected, MetricFormRejected, false, vErr, map[string]string{
			"key": key,
		})
		return FormResult{
			Valid:     false,
			Errors:    flat,
			Sanitized: sanitized,
			Failure:   vErr,
		}
	}

	c.observe(ctx, EventFormAccepted, MetricFormAccepted, true, nil, map[string]string{
		"key": key,
	})
	return FormResult{Valid: true, Sanitized: sanitized}
}

// SubmitLogin runs a login form through the defense pipeline, then through
// credential verification. The identifier is sanitized and validated; the
// password is presence-checked only and forwarded untouched, since
// mutating a credential would silently lock users out.
func (c *Client) SubmitLogin(ctx context.Context, req LoginRequest, honeypot string) (LoginOutcome, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	// The field is named "identifier", not "email": department codes are
	// legitimate identifiers and must not hit the email-shape validator.
	res := c.CheckForm(ctx, FormSubmission{
		Fields:   map[string]string{"identifier": req.Identifier},
		Honeypot: honeypot,
		Required: []string{"identifier"},
	})
	if !res.Valid {
		return nil, res.Failure
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, &ValidationError{Fields: map[string][]string{
			"password": {"password is required"},
		}}
	}

	req.Identifier = res.Sanitized["identifier"]
	return c.Login(ctx, req)
}
