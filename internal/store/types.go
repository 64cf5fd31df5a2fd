package store

import "time"

type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LineCount   int
	LastIndexed time.Time
}

type Decl struct {
	ID            int64
	FileID        *int64
	Name          string
	QualifiedName string
	Kind          string
	Language      string
	Signature     string
	ArgCount      int
	ContainerID   *int64
	StartLine     int
	StartCol      int
	EndLine       int
	IsExternal    bool
}

type SuperRef struct {
	ID          int64
	TypeID      int64
	Name        string
	ResolvedID  *int64
	IsInterface bool
	Ordinal     int
}

type Ref struct {
	ID          int64
	FileID      int64
	Name        string
	ArgCount    int
	Line        int
	Col         int
	EnclosingID *int64
	TargetID    *int64
}
