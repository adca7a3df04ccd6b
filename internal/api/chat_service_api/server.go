package chat_service_api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Domenick1991/ragbooking/internal/service/chat"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName       = "ragbooking.v1.ChatService"
	SendMessageMethod = "/" + ServiceName + "/SendMessage"
)

// ChatServiceServer carries chat messages as google.protobuf.Struct with the
// same fields as the HTTP API.
type ChatServiceServer interface {
	SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ChatServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendMessage", Handler: sendMessageHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ragbooking/v1/chat.proto",
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatServiceDesc, srv)
}

func sendMessageHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatServiceServer).SendMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SendMessageMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChatServiceServer).SendMessage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server implements ChatServiceServer on top of the chat router.
type Server struct {
	chat chat.ChatUseCase
}

func NewServer(chat chat.ChatUseCase) *Server {
	return &Server{chat: chat}
}

func (s *Server) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	resp, err := s.chat.Handle(ctx, chat.Message{
		SessionID:  fields["session_id"].GetStringValue(),
		Query:      fields["query"].GetStringValue(),
		DocumentID: fields["document_id"].GetStringValue(),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(resp)
}

func toStruct(resp *chat.Response) (*structpb.Struct, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, chat.ErrInvalidMessage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, chat.ErrBookingFailed), errors.Is(err, chat.ErrChatFailed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var _ ChatServiceServer = (*Server)(nil)
