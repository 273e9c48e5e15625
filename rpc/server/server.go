package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"wordcount/rpc/helper"

	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Context contains the context information for a RPC request.
type Context struct {
	Address string
}

// HandlerFunc is the handler function for a RPC request.
type HandlerFunc func(ctx Context, req proto.Message) (resp proto.Message, err error)

// Server is a RPC server.
type Server struct {
	mutex            sync.RWMutex
	handlerMap       map[string]HandlerFunc
	logger           *zap.Logger
	recoverFromPanic bool
}

// NewServer creates a new Server instance.
func NewServer(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		handlerMap: make(map[string]HandlerFunc),
		logger:     logger.Named("rpc-server"),
	}
}

// SetRecoverFromPanic sets whether the server should recover from panic caused
// by the registered handlers
func (s *Server) SetRecoverFromPanic(recover bool) {
	s.recoverFromPanic = recover
}

// RegisterByTypeUrl registers the handler for the specified request message type.
func (s *Server) RegisterByTypeUrl(typeUrl string, handler HandlerFunc) error {
	mt, err := protoregistry.GlobalTypes.FindMessageByURL(typeUrl)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.handlerMap[string(mt.Descriptor().FullName())] = handler
	return nil
}

// RegisterByMessage registers the handler for the specified request message.
func (s *Server) RegisterByMessage(msg proto.Message, handler HandlerFunc) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.handlerMap[string(proto.MessageName(msg))] = handler
}

// handle handles the request and returns the response.
func (s *Server) handle(ctx Context, req proto.Message) (resp proto.Message, err error) {
	name := proto.MessageName(req)
	s.mutex.RLock()
	handler, ok := s.handlerMap[string(name)]
	s.mutex.RUnlock()
	if !ok {
		err = fmt.Errorf("no handler for type %s", name)
		return
	}
	if s.recoverFromPanic {
		defer func() {
			// recover from panic
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
	}
	return handler(ctx, req)
}

func (s *Server) reply(conn net.Conn, msg proto.Message) error {
	if err := helper.Send(conn, helper.WrapMessage(msg)); err != nil {
		s.logger.Warn("send message failed", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
		return err
	}
	return nil
}

// handleConn handles the connection.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remoteAddr := conn.RemoteAddr().String()
	for {
		req, err := helper.Receive(conn)
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("receive error, closing conn", zap.String("remote", remoteAddr), zap.Error(err))
			}
			return
		}
		// unmarshal the request
		reqMsg, err := req.UnmarshalNew()
		if err != nil {
			s.logger.Warn("unknown request type, send back error",
				zap.String("type", req.GetTypeUrl()), zap.String("remote", remoteAddr))
			if s.reply(conn, wrapperspb.String(err.Error())) != nil {
				return
			}
			continue
		}

		// handle the request
		ctx := Context{
			Address: remoteAddr,
		}
		respMsg, err := s.handle(ctx, reqMsg)
		if err != nil {
			respMsg = wrapperspb.String(err.Error())
			s.logger.Info("request handled with error",
				zap.String("type", req.GetTypeUrl()), zap.String("remote", remoteAddr), zap.Error(err))
		} else {
			s.logger.Debug("request handled",
				zap.String("type", req.GetTypeUrl()), zap.String("remote", remoteAddr))
		}
		// send back the response
		if s.reply(conn, respMsg) != nil {
			return
		}
	}
}

// Serve accepts connections on listener until it is closed.
func (s *Server) Serve(listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept error", zap.Error(err))
			continue
		}
		go s.handleConn(conn)
	}
}
