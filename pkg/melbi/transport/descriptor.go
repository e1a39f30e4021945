package transport

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

//go:embed proto/melbi.proto
var melbiProtoSource string

var (
	descriptorOnce sync.Once
	fileDescriptor *desc.FileDescriptor
	descriptorErr  error
)

// FileDescriptor parses the checked-in melbi.proto contract and returns its
// descriptor, memoized after the first call. Nothing in the RPC path depends
// on this at request time; it exists so a host introspecting the service
// (or generating a client in another language) can load the wire contract
// without a protoc install, and so ServiceMethodNames below can be used to
// check that the hand-written grpc.ServiceDesc matches the contract's
// method names.
func FileDescriptor() (*desc.FileDescriptor, error) {
	descriptorOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{
				"melbi.proto": melbiProtoSource,
			}),
			ImportPaths:           []string{"."},
			IncludeSourceCodeInfo: true,
		}
		fds, err := parser.ParseFiles("melbi.proto")
		if err != nil {
			descriptorErr = fmt.Errorf("transport: parsing melbi.proto: %w", err)
			return
		}
		if len(fds) != 1 {
			descriptorErr = fmt.Errorf("transport: expected exactly one parsed file descriptor, got %d", len(fds))
			return
		}
		fileDescriptor = fds[0]
	})
	return fileDescriptor, descriptorErr
}

// ServiceMethodNames returns the RPC method names melbi.v1.CoreService
// declares in the proto contract, used by TestServiceDescMatchesProtoContract
// to check that the hand-written grpc.ServiceDesc in server.go has not
// drifted from it.
func ServiceMethodNames() ([]string, error) {
	fd, err := FileDescriptor()
	if err != nil {
		return nil, err
	}
	svc := fd.FindService("melbi.v1.CoreService")
	if svc == nil {
		return nil, fmt.Errorf("transport: melbi.proto does not declare melbi.v1.CoreService")
	}
	names := make([]string, len(svc.GetMethods()))
	for i, m := range svc.GetMethods() {
		names[i] = m.GetName()
	}
	return names, nil
}
