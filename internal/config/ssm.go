package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SecretStore resolves a named secret, e.g. an SSM parameter.
type SecretStore interface {
	Secret(ctx context.Context, name string) (string, error)
}

// SSMClient is the subset of *ssm.Client used here.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

// SSMStore reads SecureString parameters and keeps them for TTL so warm
// Lambda containers do not call SSM on every request.
type SSMStore struct {
	client SSMClient
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSecret
}

func NewSSMStore(client SSMClient, ttl time.Duration) *SSMStore {
	return &SSMStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		cache:  map[string]cachedSecret{},
	}
}

// NewSSMStoreFromEnv uses the Lambda execution role credentials.
func NewSSMStoreFromEnv(ctx context.Context, ttl time.Duration) (*SSMStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSSMStore(ssm.NewFromConfig(cfg), ttl), nil
}

func (s *SSMStore) Secret(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty parameter name")
	}

	s.mu.Lock()
	if c, ok := s.cache[name]; ok && s.now().Sub(c.fetchedAt) < s.ttl {
		s.mu.Unlock()
		return c.value, nil
	}
	s.mu.Unlock()

	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm GetParameter %s: %w", name, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("ssm parameter %s has no value", name)
	}
	v := strings.TrimSpace(aws.ToString(out.Parameter.Value))

	s.mu.Lock()
	s.cache[name] = cachedSecret{value: v, fetchedAt: s.now()}
	s.mu.Unlock()

	return v, nil
}

// Resolve fills StorefrontToken from the secret store when only the
// parameter name is configured.
func (c Config) Resolve(ctx context.Context, secrets SecretStore) (Config, error) {
	if c.StorefrontToken != "" || c.StorefrontTokenParam == "" || secrets == nil {
		return c, nil
	}
	tok, err := secrets.Secret(ctx, c.StorefrontTokenParam)
	if err != nil {
		return c, err
	}
	c.StorefrontToken = tok
	return c, nil
}
