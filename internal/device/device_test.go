//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package device_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/sync-onboard/internal/device"
	"github.com/joe/sync-onboard/pkg/clock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capturedRequest struct {
	method, apiKey, contentType string
	body                        []byte
}

func TestHTTPReleaser_SendsReleaseCommand(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	captured := make(chan capturedRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured <- capturedRequest{
			method:      r.Method,
			apiKey:      r.Header.Get("X-Api-Key"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	releaser := device.NewHTTPReleaser("secret", discardLogger())

	g.Expect(releaser.Release(context.Background(), server.URL+"/api/printer/sd")).Should(Succeed())

	req := <-captured
	g.Expect(req.method).Should(Equal(http.MethodPost))
	g.Expect(req.apiKey).Should(Equal("secret"))
	g.Expect(req.contentType).Should(Equal("application/json"))
	g.Expect(req.body).Should(MatchJSON(`{"command":"release"}`))
}

func TestHTTPReleaser_RepollsUntilNoContent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	fake := clock.NewFake(time.Now())
	releaser := device.NewHTTPReleaser("k", discardLogger(), device.WithClock(fake))

	g.Expect(releaser.Release(context.Background(), server.URL)).Should(Succeed())
	g.Expect(calls.Load()).Should(Equal(int32(3)))
	g.Expect(fake.Sleeps()).Should(Equal([]time.Duration{time.Second, time.Second}))
}

func TestHTTPReleaser_TransportFailureIsReturned(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	releaser := device.NewHTTPReleaser("k", discardLogger())

	g.Expect(releaser.Release(context.Background(), url)).ShouldNot(Succeed())
}

func TestHTTPReleaser_TimeoutIsReturned(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	releaser := device.NewHTTPReleaser("k", discardLogger(),
		device.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

	g.Expect(releaser.Release(context.Background(), server.URL)).ShouldNot(Succeed())
}

type fakePort struct {
	reads   [][]byte
	written bytes.Buffer
	timeout time.Duration
	closed  bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.reads) == 0 {
		return 0, nil
	}

	n := copy(b, p.reads[0])
	p.reads = p.reads[1:]

	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func TestSerialReleaser_WritesM22(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	port := &fakePort{reads: [][]byte{[]byte("echo:busy\n"), []byte("ok\n")}}

	var (
		dialedName string
		dialedBaud int
	)

	releaser := &device.SerialReleaser{
		Baud: device.DefaultBaudRate,
		Dial: func(name string, baud int) (device.SerialPort, error) {
			dialedName, dialedBaud = name, baud
			return port, nil
		},
		Logger: discardLogger(),
	}

	g.Expect(releaser.Release(context.Background(), "/dev/ttyUSB0")).Should(Succeed())
	g.Expect(dialedName).Should(Equal("/dev/ttyUSB0"))
	g.Expect(dialedBaud).Should(Equal(250000))
	g.Expect(port.written.String()).Should(Equal("M22\r\n"))
	g.Expect(port.timeout).Should(Equal(time.Second))
	g.Expect(port.reads).Should(BeEmpty())
	g.Expect(port.closed).Should(BeTrue())
}

func TestSerialReleaser_DialFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errBusy := errors.New("port busy")
	releaser := &device.SerialReleaser{
		Dial:   func(string, int) (device.SerialPort, error) { return nil, errBusy },
		Logger: discardLogger(),
	}

	g.Expect(errors.Is(releaser.Release(context.Background(), "COM6"), errBusy)).Should(BeTrue())
}

func TestEndpointFromUNC(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	endpoint, ok := device.EndpointFromUNC(`\\octopi\usb`)
	g.Expect(ok).Should(BeTrue())
	g.Expect(endpoint).Should(Equal("http://octopi/api/printer/sd"))

	endpoint, ok = device.EndpointFromUNC(`\\printer\share\cards`)
	g.Expect(ok).Should(BeTrue())
	g.Expect(endpoint).Should(Equal("http://printer/share/cards"))

	_, ok = device.EndpointFromUNC(`C:\local`)
	g.Expect(ok).Should(BeFalse())
}

func TestDriveLetter(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, root := range []string{`H:\`, "H:", "h:/prints"} {
		letter, ok := device.DriveLetter(root)
		g.Expect(ok).Should(BeTrue(), root)
		g.Expect(letter).Should(Equal("H"))
	}

	for _, root := range []string{"/media/sdcard", "1:", "Hx"} {
		_, ok := device.DriveLetter(root)
		g.Expect(ok).Should(BeFalse(), root)
	}
}

func TestStaticResolver(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	resolver := device.StaticResolver{
		"h":             "http://octopi/api/printer/sd",
		"/media/sdcard": "http://mk3/api/printer/sd",
		"klipper.local": "http://klipper.local/api/printer/sd",
	}

	endpoint, ok := resolver.ResolveRemoteEndpoint(`H:\`)
	g.Expect(ok).Should(BeTrue())
	g.Expect(endpoint).Should(Equal("http://octopi/api/printer/sd"))

	endpoint, ok = resolver.ResolveRemoteEndpoint("/media/sdcard/")
	g.Expect(ok).Should(BeTrue())
	g.Expect(endpoint).Should(Equal("http://mk3/api/printer/sd"))

	endpoint, ok = resolver.ResolveRemoteEndpoint("sftp://pi@klipper.local/gcodes")
	g.Expect(ok).Should(BeTrue())
	g.Expect(endpoint).Should(Equal("http://klipper.local/api/printer/sd"))

	_, ok = resolver.ResolveRemoteEndpoint("/mnt/other")
	g.Expect(ok).Should(BeFalse())
}

func TestChainResolver(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	chain := device.ChainResolver{
		device.StaticResolver{},
		device.StaticResolver{"/mnt/card": "http://second"},
	}

	endpoint, ok := chain.ResolveRemoteEndpoint("/mnt/card")
	g.Expect(ok).Should(BeTrue())
	g.Expect(endpoint).Should(Equal("http://second"))
}
