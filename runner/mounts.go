package runner

import (
	"path/filepath"
	"strings"

	"github.com/nado-dev/nado/conf"
)

// Mount is one parsed host:container[:mode] declaration.
type Mount struct {
	Host      string
	Container string
	Mode      string
}

func ParseMounts(mounts []string) ([]Mount, error) {
	parsed := make([]Mount, 0, len(mounts))
	for _, mount := range mounts {
		parts := strings.Split(mount, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, conf.ErrInvalidMount(mount)
		}

		host := strings.TrimSpace(parts[0])
		container := strings.TrimSpace(parts[1])
		if host == "" || container == "" {
			return nil, conf.ErrInvalidMount(mount)
		}

		mode := ""
		if len(parts) == 3 {
			mode = strings.TrimSpace(parts[2])
		}

		parsed = append(parsed, Mount{Host: host, Container: container, Mode: mode})
	}
	return parsed, nil
}

// dockerBind renders a mount as a docker bind string with the
// host side resolved against the config directory.
func (m Mount) dockerBind(confDir string) string {
	bind := hostPath(m.Host, confDir) + ":" + m.Container
	if m.Mode != "" {
		bind += ":" + m.Mode
	}
	return bind
}

// resolveLocalCmd substitutes container paths appearing as argv
// tokens with their host paths, so the same [[candidate]] cmd
// works for both backends.
func resolveLocalCmd(cmd []string, mounts []Mount, confDir string) []string {
	byContainer := make(map[string]string, len(mounts))
	for _, m := range mounts {
		byContainer[m.Container] = hostPath(m.Host, confDir)
	}

	resolved := make([]string, len(cmd))
	for i, arg := range cmd {
		if host, ok := byContainer[arg]; ok {
			resolved[i] = host
		} else {
			resolved[i] = arg
		}
	}
	return resolved
}

func hostPath(host, confDir string) string {
	path := host
	if !filepath.IsAbs(path) {
		path = filepath.Join(confDir, path)
	}
	if canonical, err := filepath.EvalSymlinks(path); err == nil {
		path = canonical
	}
	return path
}
