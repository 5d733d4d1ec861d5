package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// Archiver uploads each run's full report for later analysis. Reports are
// a few kilobytes of JSON, so a single PutObject per run suffices.
type Archiver struct {
	client *Client
	env    string
}

// NewArchiver creates an Archiver writing under the given environment
// prefix.
func NewArchiver(client *Client, env string) *Archiver {
	return &Archiver{client: client, env: env}
}

// archiveDoc is the stored document: the report plus its capture instant.
type archiveDoc struct {
	Timestamp time.Time     `json:"timestamp"`
	Env       string        `json:"env"`
	Report    domain.Report `json:"report"`
}

// Archive uploads the report under reports/{env}/{timestamp}.json and
// returns the object key.
func (a *Archiver) Archive(ctx context.Context, report domain.Report, now time.Time) (string, error) {
	doc := archiveDoc{Timestamp: now, Env: a.env, Report: report}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("s3blob: encode report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s.json", a.env, now.UTC().Format("20060102T150405Z"))
	_, err = a.client.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.client.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3blob: put report %s: %w", key, err)
	}
	return key, nil
}
