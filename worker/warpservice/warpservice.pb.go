// Message types for the warp worker RPC surface. See warpservice.proto for
// the wire schema; these are maintained by hand in the legacy generated
// shape so the proto package's reflection-based codec can marshal them.

package warpservice

import (
	proto "github.com/golang/protobuf/proto"
)

type GeoTransform struct {
	Form         string    `protobuf:"bytes,1,opt,name=form,proto3" json:"form,omitempty"`
	Coefficients []float64 `protobuf:"fixed64,2,rep,packed,name=coefficients,proto3" json:"coefficients,omitempty"`
}

func (m *GeoTransform) Reset()         { *m = GeoTransform{} }
func (m *GeoTransform) String() string { return proto.CompactTextString(m) }
func (*GeoTransform) ProtoMessage()    {}

func (m *GeoTransform) GetForm() string {
	if m != nil {
		return m.Form
	}
	return ""
}

func (m *GeoTransform) GetCoefficients() []float64 {
	if m != nil {
		return m.Coefficients
	}
	return nil
}

type GCP struct {
	Id   string  `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Info string  `protobuf:"bytes,2,opt,name=info,proto3" json:"info,omitempty"`
	Col  float64 `protobuf:"fixed64,3,opt,name=col,proto3" json:"col,omitempty"`
	Row  float64 `protobuf:"fixed64,4,opt,name=row,proto3" json:"row,omitempty"`
	X    float64 `protobuf:"fixed64,5,opt,name=x,proto3" json:"x,omitempty"`
	Y    float64 `protobuf:"fixed64,6,opt,name=y,proto3" json:"y,omitempty"`
	Z    float64 `protobuf:"fixed64,7,opt,name=z,proto3" json:"z,omitempty"`
}

func (m *GCP) Reset()         { *m = GCP{} }
func (m *GCP) String() string { return proto.CompactTextString(m) }
func (*GCP) ProtoMessage()    {}

type Grid struct {
	Width        int32         `protobuf:"varint,1,opt,name=width,proto3" json:"width,omitempty"`
	Height       int32         `protobuf:"varint,2,opt,name=height,proto3" json:"height,omitempty"`
	Crs          string        `protobuf:"bytes,3,opt,name=crs,proto3" json:"crs,omitempty"`
	Geotransform *GeoTransform `protobuf:"bytes,4,opt,name=geotransform,proto3" json:"geotransform,omitempty"`
	Gcps         []*GCP        `protobuf:"bytes,5,rep,name=gcps,proto3" json:"gcps,omitempty"`
}

func (m *Grid) Reset()         { *m = Grid{} }
func (m *Grid) String() string { return proto.CompactTextString(m) }
func (*Grid) ProtoMessage()    {}

func (m *Grid) GetGeotransform() *GeoTransform {
	if m != nil {
		return m.Geotransform
	}
	return nil
}

func (m *Grid) GetGcps() []*GCP {
	if m != nil {
		return m.Gcps
	}
	return nil
}

type Granule struct {
	Operation          string    `protobuf:"bytes,1,opt,name=operation,proto3" json:"operation,omitempty"`
	Path               string    `protobuf:"bytes,2,opt,name=path,proto3" json:"path,omitempty"`
	Bands              []int32   `protobuf:"varint,3,rep,packed,name=bands,proto3" json:"bands,omitempty"`
	SrcGrid            *Grid     `protobuf:"bytes,4,opt,name=src_grid,json=srcGrid,proto3" json:"src_grid,omitempty"`
	DstGrid            *Grid     `protobuf:"bytes,5,opt,name=dst_grid,json=dstGrid,proto3" json:"dst_grid,omitempty"`
	Resampling         string    `protobuf:"bytes,6,opt,name=resampling,proto3" json:"resampling,omitempty"`
	SrcNodata          float64   `protobuf:"fixed64,7,opt,name=src_nodata,json=srcNodata,proto3" json:"src_nodata,omitempty"`
	SrcNodataValid     bool      `protobuf:"varint,8,opt,name=src_nodata_valid,json=srcNodataValid,proto3" json:"src_nodata_valid,omitempty"`
	DstNodata          float64   `protobuf:"fixed64,9,opt,name=dst_nodata,json=dstNodata,proto3" json:"dst_nodata,omitempty"`
	DstNodataValid     bool      `protobuf:"varint,10,opt,name=dst_nodata_valid,json=dstNodataValid,proto3" json:"dst_nodata_valid,omitempty"`
	WarpWorkers        int32     `protobuf:"varint,11,opt,name=warp_workers,json=warpWorkers,proto3" json:"warp_workers,omitempty"`
	MemoryLimitMb      float64   `protobuf:"fixed64,12,opt,name=memory_limit_mb,json=memoryLimitMb,proto3" json:"memory_limit_mb,omitempty"`
	Tolerance          float64   `protobuf:"fixed64,13,opt,name=tolerance,proto3" json:"tolerance,omitempty"`
	WarpExtras         []string  `protobuf:"bytes,14,rep,name=warp_extras,json=warpExtras,proto3" json:"warp_extras,omitempty"`
	SrcCrs             string    `protobuf:"bytes,15,opt,name=src_crs,json=srcCrs,proto3" json:"src_crs,omitempty"`
	DstCrs             string    `protobuf:"bytes,16,opt,name=dst_crs,json=dstCrs,proto3" json:"dst_crs,omitempty"`
	Bounds             []float64 `protobuf:"fixed64,17,rep,packed,name=bounds,proto3" json:"bounds,omitempty"`
	Geometry           string    `protobuf:"bytes,18,opt,name=geometry,proto3" json:"geometry,omitempty"`
	CutAntimeridian    bool      `protobuf:"varint,19,opt,name=cut_antimeridian,json=cutAntimeridian,proto3" json:"cut_antimeridian,omitempty"`
	AntimeridianOffset float64   `protobuf:"fixed64,20,opt,name=antimeridian_offset,json=antimeridianOffset,proto3" json:"antimeridian_offset,omitempty"`
	Precision          int32     `protobuf:"varint,21,opt,name=precision,proto3" json:"precision,omitempty"`
}

func (m *Granule) Reset()         { *m = Granule{} }
func (m *Granule) String() string { return proto.CompactTextString(m) }
func (*Granule) ProtoMessage()    {}

func (m *Granule) GetSrcGrid() *Grid {
	if m != nil {
		return m.SrcGrid
	}
	return nil
}

func (m *Granule) GetDstGrid() *Grid {
	if m != nil {
		return m.DstGrid
	}
	return nil
}

type Raster struct {
	Data        []byte  `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
	Width       int32   `protobuf:"varint,2,opt,name=width,proto3" json:"width,omitempty"`
	Height      int32   `protobuf:"varint,3,opt,name=height,proto3" json:"height,omitempty"`
	Bands       int32   `protobuf:"varint,4,opt,name=bands,proto3" json:"bands,omitempty"`
	DataType    string  `protobuf:"bytes,5,opt,name=data_type,json=dataType,proto3" json:"data_type,omitempty"`
	Nodata      float64 `protobuf:"fixed64,6,opt,name=nodata,proto3" json:"nodata,omitempty"`
	NodataValid bool    `protobuf:"varint,7,opt,name=nodata_valid,json=nodataValid,proto3" json:"nodata_valid,omitempty"`
}

func (m *Raster) Reset()         { *m = Raster{} }
func (m *Raster) String() string { return proto.CompactTextString(m) }
func (*Raster) ProtoMessage()    {}

func (m *Raster) GetData() []byte {
	if m != nil {
		return m.Data
	}
	return nil
}

type WorkerMetrics struct {
	BytesRead    int64 `protobuf:"varint,1,opt,name=bytes_read,json=bytesRead,proto3" json:"bytes_read,omitempty"`
	BytesWritten int64 `protobuf:"varint,2,opt,name=bytes_written,json=bytesWritten,proto3" json:"bytes_written,omitempty"`
	UserTime     int64 `protobuf:"varint,3,opt,name=user_time,json=userTime,proto3" json:"user_time,omitempty"`
	SysTime      int64 `protobuf:"varint,4,opt,name=sys_time,json=sysTime,proto3" json:"sys_time,omitempty"`
}

func (m *WorkerMetrics) Reset()         { *m = WorkerMetrics{} }
func (m *WorkerMetrics) String() string { return proto.CompactTextString(m) }
func (*WorkerMetrics) ProtoMessage()    {}

type Result struct {
	Raster       *Raster        `protobuf:"bytes,1,opt,name=raster,proto3" json:"raster,omitempty"`
	Geotransform *GeoTransform  `protobuf:"bytes,2,opt,name=geotransform,proto3" json:"geotransform,omitempty"`
	Width        int32          `protobuf:"varint,3,opt,name=width,proto3" json:"width,omitempty"`
	Height       int32          `protobuf:"varint,4,opt,name=height,proto3" json:"height,omitempty"`
	Geometry     string         `protobuf:"bytes,5,opt,name=geometry,proto3" json:"geometry,omitempty"`
	Info         string         `protobuf:"bytes,6,opt,name=info,proto3" json:"info,omitempty"`
	Error        string         `protobuf:"bytes,7,opt,name=error,proto3" json:"error,omitempty"`
	Metrics      *WorkerMetrics `protobuf:"bytes,8,opt,name=metrics,proto3" json:"metrics,omitempty"`
}

func (m *Result) Reset()         { *m = Result{} }
func (m *Result) String() string { return proto.CompactTextString(m) }
func (*Result) ProtoMessage()    {}

func (m *Result) GetRaster() *Raster {
	if m != nil {
		return m.Raster
	}
	return nil
}

func (m *Result) GetMetrics() *WorkerMetrics {
	if m != nil {
		return m.Metrics
	}
	return nil
}

func init() {
	proto.RegisterType((*GeoTransform)(nil), "warpservice.GeoTransform")
	proto.RegisterType((*GCP)(nil), "warpservice.GCP")
	proto.RegisterType((*Grid)(nil), "warpservice.Grid")
	proto.RegisterType((*Granule)(nil), "warpservice.Granule")
	proto.RegisterType((*Raster)(nil), "warpservice.Raster")
	proto.RegisterType((*WorkerMetrics)(nil), "warpservice.WorkerMetrics")
	proto.RegisterType((*Result)(nil), "warpservice.Result")
}
