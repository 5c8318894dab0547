package runtime

import "testing"

func TestResolveTransportUnix(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "freebsd"} {
		host, err := ResolveTransport(goos)
		if err != nil {
			t.Fatalf("ResolveTransport(%s) returned error: %v", goos, err)
		}
		if host != "unix:///var/run/docker.sock" {
			t.Errorf("ResolveTransport(%s) = %s, expected unix socket", goos, host)
		}
	}
}

func TestResolveTransportWindows(t *testing.T) {
	host, err := ResolveTransport("windows")
	if err != nil {
		t.Fatalf("ResolveTransport(windows) returned error: %v", err)
	}
	if host != "npipe:////./pipe/docker_engine" {
		t.Errorf("ResolveTransport(windows) = %s, expected named pipe", host)
	}
}

func TestResolveTransportUnsupported(t *testing.T) {
	if _, err := ResolveTransport("js"); err == nil {
		t.Error("Expected error for unsupported platform, got nil")
	}
}

func TestIsUnixLike(t *testing.T) {
	if !IsUnixLike("linux") {
		t.Error("Expected linux to be unix-like")
	}
	if IsUnixLike("windows") {
		t.Error("Expected windows not to be unix-like")
	}
}
