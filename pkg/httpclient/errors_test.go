package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{ErrDNS, ErrTLS, ErrTimeout, ErrRefused, ErrTooManyRedirects}
	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			if errors.Is(sentinels[i], sentinels[j]) {
				t.Errorf("sentinel %d and %d must be distinct", i, j)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}, ErrDNS},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", Name: "slow.example", IsTimeout: true}, ErrTimeout},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, Classify(nil))
	plain := errors.New("something else")
	assert.Same(t, plain, Classify(plain))
}

func TestClassify_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = New(DefaultConfig()).Get("http://" + addr + "/")
	require.Error(t, err)
	assert.ErrorIs(t, Classify(err), ErrRefused)
}

func TestClassify_Idempotent(t *testing.T) {
	once := Classify(&net.DNSError{Err: "no such host", Name: "x.invalid"})
	twice := Classify(once)
	assert.Equal(t, once.Error(), twice.Error())
}
