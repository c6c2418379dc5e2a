package explore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "muzz.explore.ExploreService"

// Full method names.
const (
	ExploreService_Discover_FullMethodName        = "/" + serviceName + "/Discover"
	ExploreService_RecordAction_FullMethodName    = "/" + serviceName + "/RecordAction"
	ExploreService_GetMatches_FullMethodName      = "/" + serviceName + "/GetMatches"
	ExploreService_UpdateLocation_FullMethodName  = "/" + serviceName + "/UpdateLocation"
	ExploreService_ListLikedYou_FullMethodName    = "/" + serviceName + "/ListLikedYou"
	ExploreService_ListNewLikedYou_FullMethodName = "/" + serviceName + "/ListNewLikedYou"
	ExploreService_CountLikedYou_FullMethodName   = "/" + serviceName + "/CountLikedYou"
)

// ExploreServiceServer is the server API for ExploreService.
type ExploreServiceServer interface {
	Discover(context.Context, *DiscoverRequest) (*DiscoverResponse, error)
	RecordAction(context.Context, *RecordActionRequest) (*RecordActionResponse, error)
	GetMatches(context.Context, *GetMatchesRequest) (*GetMatchesResponse, error)
	UpdateLocation(context.Context, *UpdateLocationRequest) (*UpdateLocationResponse, error)
	ListLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error)
	ListNewLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error)
	CountLikedYou(context.Context, *CountLikedYouRequest) (*CountLikedYouResponse, error)
	mustEmbedUnimplementedExploreServiceServer()
}

// UnimplementedExploreServiceServer must be embedded by implementations so
// new methods do not break them.
type UnimplementedExploreServiceServer struct{}

func (UnimplementedExploreServiceServer) Discover(context.Context, *DiscoverRequest) (*DiscoverResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Discover not implemented")
}

func (UnimplementedExploreServiceServer) RecordAction(context.Context, *RecordActionRequest) (*RecordActionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordAction not implemented")
}

func (UnimplementedExploreServiceServer) GetMatches(context.Context, *GetMatchesRequest) (*GetMatchesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMatches not implemented")
}

func (UnimplementedExploreServiceServer) UpdateLocation(context.Context, *UpdateLocationRequest) (*UpdateLocationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateLocation not implemented")
}

func (UnimplementedExploreServiceServer) ListLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListLikedYou not implemented")
}

func (UnimplementedExploreServiceServer) ListNewLikedYou(context.Context, *ListLikedYouRequest) (*ListLikedYouResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListNewLikedYou not implemented")
}

func (UnimplementedExploreServiceServer) CountLikedYou(context.Context, *CountLikedYouRequest) (*CountLikedYouResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CountLikedYou not implemented")
}

func (UnimplementedExploreServiceServer) mustEmbedUnimplementedExploreServiceServer() {}

// RegisterExploreServiceServer attaches srv to s.
func RegisterExploreServiceServer(s grpc.ServiceRegistrar, srv ExploreServiceServer) {
	s.RegisterService(&ExploreService_ServiceDesc, srv)
}

// unary adapts a typed method into a grpc.MethodDesc handler.
func unary[Req, Resp any](
	fullMethod string,
	call func(ExploreServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ExploreServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ExploreServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ExploreService_ServiceDesc is the grpc.ServiceDesc for ExploreService.
var ExploreService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ExploreServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Discover", Handler: unary(ExploreService_Discover_FullMethodName, ExploreServiceServer.Discover)},
		{MethodName: "RecordAction", Handler: unary(ExploreService_RecordAction_FullMethodName, ExploreServiceServer.RecordAction)},
		{MethodName: "GetMatches", Handler: unary(ExploreService_GetMatches_FullMethodName, ExploreServiceServer.GetMatches)},
		{MethodName: "UpdateLocation", Handler: unary(ExploreService_UpdateLocation_FullMethodName, ExploreServiceServer.UpdateLocation)},
		{MethodName: "ListLikedYou", Handler: unary(ExploreService_ListLikedYou_FullMethodName, ExploreServiceServer.ListLikedYou)},
		{MethodName: "ListNewLikedYou", Handler: unary(ExploreService_ListNewLikedYou_FullMethodName, ExploreServiceServer.ListNewLikedYou)},
		{MethodName: "CountLikedYou", Handler: unary(ExploreService_CountLikedYou_FullMethodName, ExploreServiceServer.CountLikedYou)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "explore.proto",
}

// ExploreServiceClient is the client API for ExploreService.
type ExploreServiceClient interface {
	Discover(ctx context.Context, in *DiscoverRequest, opts ...grpc.CallOption) (*DiscoverResponse, error)
	RecordAction(ctx context.Context, in *RecordActionRequest, opts ...grpc.CallOption) (*RecordActionResponse, error)
	GetMatches(ctx context.Context, in *GetMatchesRequest, opts ...grpc.CallOption) (*GetMatchesResponse, error)
	UpdateLocation(ctx context.Context, in *UpdateLocationRequest, opts ...grpc.CallOption) (*UpdateLocationResponse, error)
	ListLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error)
	ListNewLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error)
	CountLikedYou(ctx context.Context, in *CountLikedYouRequest, opts ...grpc.CallOption) (*CountLikedYouResponse, error)
}

type exploreServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewExploreServiceClient returns a client that speaks the JSON subtype.
func NewExploreServiceClient(cc grpc.ClientConnInterface) ExploreServiceClient {
	return &exploreServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *exploreServiceClient) Discover(ctx context.Context, in *DiscoverRequest, opts ...grpc.CallOption) (*DiscoverResponse, error) {
	return invoke[DiscoverResponse](ctx, c.cc, ExploreService_Discover_FullMethodName, in, opts)
}

func (c *exploreServiceClient) RecordAction(ctx context.Context, in *RecordActionRequest, opts ...grpc.CallOption) (*RecordActionResponse, error) {
	return invoke[RecordActionResponse](ctx, c.cc, ExploreService_RecordAction_FullMethodName, in, opts)
}

func (c *exploreServiceClient) GetMatches(ctx context.Context, in *GetMatchesRequest, opts ...grpc.CallOption) (*GetMatchesResponse, error) {
	return invoke[GetMatchesResponse](ctx, c.cc, ExploreService_GetMatches_FullMethodName, in, opts)
}

func (c *exploreServiceClient) UpdateLocation(ctx context.Context, in *UpdateLocationRequest, opts ...grpc.CallOption) (*UpdateLocationResponse, error) {
	return invoke[UpdateLocationResponse](ctx, c.cc, ExploreService_UpdateLocation_FullMethodName, in, opts)
}

func (c *exploreServiceClient) ListLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	return invoke[ListLikedYouResponse](ctx, c.cc, ExploreService_ListLikedYou_FullMethodName, in, opts)
}

func (c *exploreServiceClient) ListNewLikedYou(ctx context.Context, in *ListLikedYouRequest, opts ...grpc.CallOption) (*ListLikedYouResponse, error) {
	return invoke[ListLikedYouResponse](ctx, c.cc, ExploreService_ListNewLikedYou_FullMethodName, in, opts)
}

func (c *exploreServiceClient) CountLikedYou(ctx context.Context, in *CountLikedYouRequest, opts ...grpc.CallOption) (*CountLikedYouResponse, error) {
	return invoke[CountLikedYouResponse](ctx, c.cc, ExploreService_CountLikedYou_FullMethodName, in, opts)
}
