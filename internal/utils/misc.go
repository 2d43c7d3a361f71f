package utils

import (
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

func WaitForSignal() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	return ch
}

// GetMyIPv4Addr get ipv4 address of every RUNNING interfaces on the host
// Note: ipv6, loopback and non-private addressess are ignored
func GetMyIPv4Addr() ([]net.IP, error) {
	intfs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	res := make([]net.IP, 0)

	for _, intf := range intfs {
		if intf.Flags&net.FlagRunning == 0 {
			continue
		}
		addrs, _ := intf.Addrs()
		for idx := range addrs {
			ip, _, _ := net.ParseCIDR(addrs[idx].String())
			if ip.To4() != nil && !ip.IsLoopback() && ip.IsPrivate() {
				res = append(res, ip)
			}
		}
	}
	return res, nil
}

// ShareURLs lists the URLs a peer can open to reach a server listening on
// address:port. An unspecified address expands to every private IPv4 of the
// host, or loopback when there is none.
func ShareURLs(address string, port uint16) []string {
	p := strconv.Itoa(int(port))
	ip := net.ParseIP(address)
	if ip != nil && !ip.IsUnspecified() {
		return []string{"http://" + net.JoinHostPort(address, p) + "/"}
	}

	ips, _ := GetMyIPv4Addr()
	if len(ips) == 0 {
		return []string{"http://" + net.JoinHostPort("127.0.0.1", p) + "/"}
	}
	urls := make([]string, 0, len(ips))
	for _, ip := range ips {
		urls = append(urls, "http://"+net.JoinHostPort(ip.String(), p)+"/")
	}
	return urls
}

func RandChoice[T any](l []T) T {
	return l[rand.Intn(len(l))]
}
