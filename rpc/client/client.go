package client

import (
	"errors"
	"net"
	"sync"

	"wordcount/rpc/helper"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a client for rpc
type Client struct {
	conn net.Conn
	m    sync.Mutex
}

// NewClient creates a new client
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
	}
}

// SendRequest sends a request and receives a response. An error reply from
// the server is returned as err.
func (c *Client) SendRequest(req proto.Message) (resp proto.Message, err error) {
	c.m.Lock()
	defer c.m.Unlock()
	err = helper.Send(c.conn, helper.WrapMessage(req))
	if err != nil {
		return
	}
	payload, err := helper.Receive(c.conn)
	if err != nil {
		return
	}
	resp, err = payload.UnmarshalNew()
	if err != nil {
		return nil, err
	}
	if e, ok := resp.(*wrapperspb.StringValue); ok {
		return nil, errors.New(e.GetValue())
	}
	return
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
