package protobuf

import (
	"fmt"
	"regexp"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/wudi/schemadiff/internal/errors"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/descriptorpb"
)

const sourceName = "schema.proto"

var syntaxStatement = regexp.MustCompile(`(?m)^\s*syntax\s*=`)

// Parse accepts a text-format FileDescriptorProto or .proto source. Source
// without a syntax statement is read as proto3.
func (Strategy) Parse(content string) (*descriptorpb.FileDescriptorProto, error) {
	fd := &descriptorpb.FileDescriptorProto{}
	textErr := prototext.Unmarshal([]byte(content), fd)
	if textErr == nil {
		return fd, nil
	}

	fd, srcErr := parseSource(content)
	if srcErr == nil {
		return fd, nil
	}
	return nil, errors.Wrap(
		fmt.Errorf("as text format: %v; as proto source: %w", textErr, srcErr),
		errors.KindProtobuf, "invalid protobuf descriptor")
}

func parseSource(content string) (*descriptorpb.FileDescriptorProto, error) {
	if !syntaxStatement.MatchString(content) {
		content = "syntax = \"proto3\";\n" + content
	}

	p := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{sourceName: content}),
	}
	fds, err := p.ParseFilesButDoNotLink(sourceName)
	if err != nil {
		return nil, err
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("no descriptor produced for %s", sourceName)
	}
	return fds[0], nil
}
