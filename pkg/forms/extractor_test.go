package forms

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldscan/shieldscan/pkg/httpclient"
)

func TestExtractor_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<form action="/a" method="post"><input name="x"></form><form><input name="y"></form>`)
	}))
	defer srv.Close()

	e := NewExtractor(Config{Client: httpclient.New(httpclient.DefaultConfig())})
	got := e.Extract(context.Background(), srv.URL)
	require.Len(t, got, 2)
	assert.Equal(t, MethodPost, got[0].Method)
	assert.Equal(t, "y", got[1].Fields[0].Name)
}

func TestExtractor_ParsesErrorPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<form action="/s"><input name="q"></form>`)
	}))
	defer srv.Close()

	got := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	require.Len(t, got, 1)
}

func TestExtractor_Charset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "café" in Latin-1
		_, _ = w.Write([]byte("<form><input name=\"q\" value=\"caf\xe9\"></form>"))
	}))
	defer srv.Close()

	got := NewExtractor(Config{}).Extract(context.Background(), srv.URL)
	require.Len(t, got, 1)
	assert.Equal(t, "café", got[0].Fields[0].Value)
}

func TestExtractor_NetworkFailureYieldsNoForms(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	e := NewExtractor(Config{})
	assert.Empty(t, e.Extract(context.Background(), "http://"+addr+"/"))
	assert.Empty(t, e.Extract(context.Background(), "://bad url"))
}
