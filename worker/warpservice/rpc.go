// gRPC bindings for the Warp service, maintained by hand alongside
// warpservice.pb.go.

package warpservice

import (
	context "golang.org/x/net/context"
	grpc "google.golang.org/grpc"
)

type WarpClient interface {
	Process(ctx context.Context, in *Granule, opts ...grpc.CallOption) (*Result, error)
}

type warpClient struct {
	cc *grpc.ClientConn
}

func NewWarpClient(cc *grpc.ClientConn) WarpClient {
	return &warpClient{cc}
}

func (c *warpClient) Process(ctx context.Context, in *Granule, opts ...grpc.CallOption) (*Result, error) {
	out := new(Result)
	err := c.cc.Invoke(ctx, "/warpservice.Warp/Process", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type WarpServer interface {
	Process(context.Context, *Granule) (*Result, error)
}

func RegisterWarpServer(s *grpc.Server, srv WarpServer) {
	s.RegisterService(&_Warp_serviceDesc, srv)
}

func _Warp_Process_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Granule)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WarpServer).Process(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/warpservice.Warp/Process",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WarpServer).Process(ctx, req.(*Granule))
	}
	return interceptor(ctx, in, info, handler)
}

var _Warp_serviceDesc = grpc.ServiceDesc{
	ServiceName: "warpservice.Warp",
	HandlerType: (*WarpServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Process",
			Handler:    _Warp_Process_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "warpservice.proto",
}
