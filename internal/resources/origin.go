package resources

import "fmt"

// Kind distinguishes where resources were found.
type Kind int

const (
	KindDevFolder Kind = iota + 1
	KindEmbeddedArchive
)

func (k Kind) String() string {
	switch k {
	case KindDevFolder:
		return "dev-folder"
	case KindEmbeddedArchive:
		return "embedded-archive"
	default:
		return "unknown"
	}
}

// Origin describes a located resource source. Path is set for dev folders;
// ContainerPath, Offset and Length describe an embedded archive region.
type Origin struct {
	Kind          Kind
	Path          string
	ContainerPath string
	Offset        int64
	Length        int64
}

// DevFolder returns an origin for a development resource folder.
func DevFolder(path string) Origin {
	return Origin{Kind: KindDevFolder, Path: path}
}

// EmbeddedArchive returns an origin for an archive starting at offset within container.
func EmbeddedArchive(container string, offset, length int64) Origin {
	return Origin{Kind: KindEmbeddedArchive, ContainerPath: container, Offset: offset, Length: length}
}

func (o Origin) String() string {
	switch o.Kind {
	case KindDevFolder:
		return fmt.Sprintf("dev folder %s", o.Path)
	case KindEmbeddedArchive:
		return fmt.Sprintf("archive in %s at offset %d (%d bytes)", o.ContainerPath, o.Offset, o.Length)
	default:
		return "no origin"
	}
}
