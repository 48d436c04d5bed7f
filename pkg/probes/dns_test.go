package probes

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldscan/shieldscan/pkg/finding"
	"github.com/shieldscan/shieldscan/pkg/target"
)

type fakeResolver struct {
	ips    []string
	names  []string
	fwdErr error
	revErr error
}

func (f fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	if f.fwdErr != nil {
		return nil, f.fwdErr
	}
	out := make([]net.IPAddr, 0, len(f.ips))
	for _, ip := range f.ips {
		out = append(out, net.IPAddr{IP: net.ParseIP(ip)})
	}
	return out, nil
}

func (f fakeResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	if f.revErr != nil {
		return nil, f.revErr
	}
	return f.names, nil
}

func TestDNSLookup_Lookup(t *testing.T) {
	d := NewDNSLookup(DNSConfig{Resolver: fakeResolver{
		ips:   []string{"2001:db8::1", "93.184.216.34"},
		names: []string{"edge.example.net."},
	}})

	res := d.Run(context.Background(), target.Target{Host: "example.com"})
	require.False(t, res.Failed())
	assert.Equal(t, finding.HostDetails, res.Category)
	assert.Equal(t, []string{
		"Getting host details for example.com...",
		"Host IP: 93.184.216.34",
		"Host Name: edge.example.net",
	}, res.Strings())
}

func TestDNSLookup_ForwardFailure(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}
	d := NewDNSLookup(DNSConfig{Resolver: fakeResolver{fwdErr: dnsErr}})

	res := d.Lookup(context.Background(), "nope.invalid")
	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, finding.ErrCheckFailed)
	assert.Equal(t, []string{
		"Getting host details for nope.invalid...",
		"Error getting host details: lookup nope.invalid: no such host",
	}, res.Strings())
}

func TestDNSLookup_ReverseFailureKeepsIP(t *testing.T) {
	d := NewDNSLookup(DNSConfig{Resolver: fakeResolver{ips: []string{"10.0.0.7"}}})

	res := d.Lookup(context.Background(), "intranet")
	require.True(t, res.Failed())
	lines := res.Strings()
	require.Len(t, lines, 3)
	assert.Equal(t, "Host IP: 10.0.0.7", lines[1])
	assert.Contains(t, lines[2], "Error getting host details: ")
	assert.Contains(t, lines[2], "no PTR record")
}

func TestDNSLookup_Unresolvable(t *testing.T) {
	res := NewDNSLookup(DNSConfig{}).Lookup(context.Background(), "nonexistent.invalid")
	require.True(t, res.Failed())
	assert.Contains(t, res.Strings()[1], "Error getting host details: ")
}

type recordingResolver struct {
	fakeResolver
	hosts []string
}

func (r *recordingResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	r.hosts = append(r.hosts, host)
	return r.fakeResolver.LookupIPAddr(ctx, host)
}

func TestDNSLookup_HostWithPort(t *testing.T) {
	rr := &recordingResolver{fakeResolver: fakeResolver{
		ips:   []string{"93.184.216.34"},
		names: []string{"edge.example.net."},
	}}
	d := NewDNSLookup(DNSConfig{Resolver: rr})

	res := d.Run(context.Background(), target.Target{URL: "http://example.com:8080/", Host: "example.com:8080"})
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, []string{"example.com"}, rr.hosts)
	assert.Equal(t, "Getting host details for example.com:8080...", res.Strings()[0])
	assert.Equal(t, "Host IP: 93.184.216.34", res.Strings()[1])
}

func TestDNSLookup_SystemResolverHostWithPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	d := NewDNSLookup(DNSConfig{})
	res := d.Lookup(context.Background(), ln.Addr().String())

	// The reverse lookup depends on the host's resolver; the forward one
	// must succeed for an IP literal.
	lines := res.Strings()
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "Host IP: 127.0.0.1", lines[1])
}
