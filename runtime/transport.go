package runtime

import "fmt"

// Transport selection for the local Docker daemon. Unix-like hosts talk to
// the daemon over a domain socket, Windows over a named pipe. Anything else
// cannot host workloads and is rejected at startup.
const (
	unixSocket  = "unix:///var/run/docker.sock"
	windowsPipe = "npipe:////./pipe/docker_engine"
)

// ResolveTransport returns the daemon endpoint for the given GOOS value.
func ResolveTransport(goos string) (string, error) {
	switch goos {
	case "windows":
		return windowsPipe, nil
	case "linux", "darwin", "freebsd", "openbsd", "netbsd", "solaris":
		return unixSocket, nil
	default:
		return "", fmt.Errorf("unsupported platform %q: no container runtime transport available", goos)
	}
}

// IsUnixLike reports whether the given GOOS value gets the Unix container
// treatment (privileged mode plus /dev and /tmp bind mounts).
func IsUnixLike(goos string) bool {
	return goos != "windows"
}
