package util

import (
	"fmt"
	"net"
)

// maxPortAttempts 向后探测的端口数量
const maxPortAttempts = 20

// FindAvailablePort 从 startPort 起查找可监听的端口；全部被占用时返回 startPort
func FindAvailablePort(startPort int) int {
	for port := startPort; port < startPort+maxPortAttempts && port <= 65535; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port
	}
	return startPort
}
