// Package util 本地运行辅助：打开浏览器、探测端口
package util

import (
	"errors"
	"os/exec"
	"runtime"
)

// launchers 各平台打开 URL 的命令，按顺序尝试
var launchers = map[string][][]string{
	// rundll32 在 Windows 7 上比 cmd /c start 稳定
	"windows": {{"rundll32", "url.dll,FileProtocolHandler"}, {"explorer"}},
	"darwin":  {{"open"}},
	"linux":   {{"xdg-open"}, {"google-chrome"}, {"firefox"}, {"chromium-browser"}, {"sensible-browser"}},
}

// ErrNoLauncher 当前平台没有可用的浏览器启动命令
var ErrNoLauncher = errors.New("no browser launcher available")

// OpenBrowserWithFallback 用默认浏览器打开 url，失败时依次尝试备选命令
func OpenBrowserWithFallback(url string) error {
	cmds, ok := launchers[runtime.GOOS]
	if !ok {
		cmds = launchers["linux"]
	}
	return openWith(cmds, url, func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	})
}

func openWith(cmds [][]string, url string, start func(name string, args ...string) error) error {
	err := ErrNoLauncher
	for _, c := range cmds {
		args := append(append([]string(nil), c[1:]...), url)
		if err = start(c[0], args...); err == nil {
			return nil
		}
	}
	return err
}
