package grpc

// proto.go carries the hand-written service descriptor for
// msgrisk.v1.MessageRiskService. Messages are plain Go structs carried by
// the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "msgrisk.v1.MessageRiskService"

// MessageRiskServiceServer is the server API for MessageRiskService.
type MessageRiskServiceServer interface {
	AssessMessage(context.Context, *AssessMessageRequest) (*AssessMessageResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error)
	ScoreMessage(context.Context, *ScoreMessageRequest) (*ScoreMessageResponse, error)
	mustEmbedUnimplementedMessageRiskServiceServer()
}

// UnimplementedMessageRiskServiceServer provides forward-compatible default implementations.
type UnimplementedMessageRiskServiceServer struct{}

func (UnimplementedMessageRiskServiceServer) AssessMessage(context.Context, *AssessMessageRequest) (*AssessMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessMessage not implemented")
}
func (UnimplementedMessageRiskServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedMessageRiskServiceServer) ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAssessments not implemented")
}
func (UnimplementedMessageRiskServiceServer) ScoreMessage(context.Context, *ScoreMessageRequest) (*ScoreMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreMessage not implemented")
}
func (UnimplementedMessageRiskServiceServer) mustEmbedUnimplementedMessageRiskServiceServer() {}

// RegisterMessageRiskServiceServer registers srv with the gRPC server.
func RegisterMessageRiskServiceServer(s grpclib.ServiceRegistrar, srv MessageRiskServiceServer) {
	s.RegisterService(&messageRiskServiceDesc, srv)
}

var messageRiskServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MessageRiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessMessage", Handler: assessMessageHandler},
		{MethodName: "GetAssessment", Handler: getAssessmentHandler},
		{MethodName: "ListAssessments", Handler: listAssessmentsHandler},
		{MethodName: "ScoreMessage", Handler: scoreMessageHandler},
	},
	Streams: []grpclib.StreamDesc{},
}

// unaryHandler decodes req and runs call through the server's interceptor chain.
func unaryHandler[Req any, Resp any](
	method string,
	call func(MessageRiskServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MessageRiskServiceServer), ctx, req)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MessageRiskServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var (
	assessMessageHandler   = unaryHandler("AssessMessage", MessageRiskServiceServer.AssessMessage)
	getAssessmentHandler   = unaryHandler("GetAssessment", MessageRiskServiceServer.GetAssessment)
	listAssessmentsHandler = unaryHandler("ListAssessments", MessageRiskServiceServer.ListAssessments)
	scoreMessageHandler    = unaryHandler("ScoreMessage", MessageRiskServiceServer.ScoreMessage)
)
