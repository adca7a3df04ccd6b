package chat_service_api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// SendMessagePath is the REST route the gateway maps onto SendMessage.
const SendMessagePath = "/v1/chat/message"

// RegisterChatServiceHandlerFromEndpoint dials endpoint and registers the
// REST routes of ChatService on mux. The connection is closed when ctx is done.
func RegisterChatServiceHandlerFromEndpoint(ctx context.Context, mux *runtime.ServeMux, endpoint string, opts []grpc.DialOption) error {
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return RegisterChatServiceHandlerClient(ctx, mux, conn)
}

// RegisterChatServiceHandlerClient forwards POST /v1/chat/message to
// ChatService/SendMessage over conn. The body is decoded into a
// google.protobuf.Struct with the mux's inbound marshaler.
func RegisterChatServiceHandlerClient(_ context.Context, mux *runtime.ServeMux, conn grpc.ClientConnInterface) error {
	return mux.HandlePath(http.MethodPost, SendMessagePath, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		inbound, outbound := runtime.MarshalerForRequest(mux, r)

		annotated, err := runtime.AnnotateContext(ctx, mux, r, SendMessageMethod, runtime.WithHTTPPathPattern(SendMessagePath))
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}

		in := new(structpb.Struct)
		if err := inbound.NewDecoder(r.Body).Decode(in); err != nil && !errors.Is(err, io.EOF) {
			runtime.HTTPError(annotated, mux, outbound, w, r, status.Errorf(codes.InvalidArgument, "%v", err))
			return
		}

		var md runtime.ServerMetadata
		out := new(structpb.Struct)
		if err := conn.Invoke(annotated, SendMessageMethod, in, out, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD)); err != nil {
			runtime.HTTPError(runtime.NewServerMetadataContext(annotated, md), mux, outbound, w, r, err)
			return
		}
		runtime.ForwardResponseMessage(runtime.NewServerMetadataContext(annotated, md), mux, outbound, w, r, out, mux.GetForwardResponseOptions()...)
	})
}
