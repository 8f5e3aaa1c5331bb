package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Store errors
	StoreOpenError
	StoreQueryError
	StoreExecError
	StoreInvalidIdentifierError
	StoreTransactionError
	StoreNotFoundError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError
	SchemaSeedError
	SchemaDropError

	// Validation errors
	TaxonDuplicateError
	TaxonNameCollisionError
	SynonymAuthorCountError
	RankOrderError
	ParentStatusError
	TaxonFieldError
	VocabDuplicateError
	VocabFieldError

	// Remote service errors
	RemoteRequestError
	RemoteStatusError
	RemoteDecodeError
	RemoteRecordRejectedError
	ReconcileRankError

	// Cache errors
	CacheOpenError
	CacheNotOpenError
	CacheReadError
	CacheWriteError

	// Parse errors
	LabelParseError
	ImportParseError
)
