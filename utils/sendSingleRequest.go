package utils

import (
	"net"
	"time"

	"wordcount/rpc/client"

	"google.golang.org/protobuf/proto"
)

// SendSingleRequest send a single request to a server and receive a response
func SendSingleRequest(address string, req proto.Message, timeout time.Duration) (resp proto.Message, err error) {
	var conn net.Conn
	conn, err = net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return
	}
	if timeout > 0 {
		if err = conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return
		}
	}
	c := client.NewClient(conn)
	defer c.Close()
	return c.SendRequest(req)
}
