package core

import (
	"time"

	com "github.com/mus-format/common-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the domain types. Field order is part of
// the storage format and must not change; append new fields at the end and
// bump the key prefixes in storage/badger if the layout ever has to break.

// IDMUS serializes IDs as varint-encoded uint64.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// RoleMUS serializes Roles as varint-encoded int.
var RoleMUS = roleMUS{}

type roleMUS struct{}

func (roleMUS) Marshal(role Role, bs []byte) (n int) {
	return varint.Int.Marshal(int(role), bs)
}

func (roleMUS) Unmarshal(bs []byte) (role Role, n int, err error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return Role(v), n, err
}

func (roleMUS) Size(role Role) (size int) {
	return varint.Int.Size(int(role))
}

func (roleMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

// timeMUS serializes timestamps as varint-encoded Unix microseconds.
type timeMUS struct{}

func (timeMUS) Marshal(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) (size int) {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// vectorMUS serializes embedding vectors as a varint length prefix followed
// by raw little-endian float32 elements.
type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, com.ErrNegativeLength
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func (vectorMUS) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return n, err
	}
	if length < 0 {
		return n, com.ErrNegativeLength
	}
	for i := 0; i < length; i++ {
		n1, err := raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

var (
	timeSer   = timeMUS{}
	vectorSer = vectorMUS{}
	stringSer = ord.String
)

// RecordMUS serializes Records.
var RecordMUS = recordMUS{}

type recordMUS struct{}

func (recordMUS) Marshal(record Record, bs []byte) (n int) {
	n = IDMUS.Marshal(record.Id, bs)
	n += stringSer.Marshal(record.ConversationId, bs[n:])
	n += RoleMUS.Marshal(record.Role, bs[n:])
	n += stringSer.Marshal(record.AuthorName, bs[n:])
	n += stringSer.Marshal(record.Content, bs[n:])
	n += varint.Uint64.Marshal(record.SequenceNumber, bs[n:])
	n += timeSer.Marshal(record.CreatedAt, bs[n:])
	n += IDMUS.Marshal(record.EmbeddingId, bs[n:])
	return n
}

func (recordMUS) Unmarshal(bs []byte) (record Record, n int, err error) {
	var n1 int
	record.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return record, n, err
	}
	record.ConversationId, n1, err = stringSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.Role, n1, err = RoleMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.AuthorName, n1, err = stringSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.Content, n1, err = stringSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.SequenceNumber, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.CreatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.EmbeddingId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	return record, n, err
}

func (recordMUS) Size(record Record) (size int) {
	size = IDMUS.Size(record.Id)
	size += stringSer.Size(record.ConversationId)
	size += RoleMUS.Size(record.Role)
	size += stringSer.Size(record.AuthorName)
	size += stringSer.Size(record.Content)
	size += varint.Uint64.Size(record.SequenceNumber)
	size += timeSer.Size(record.CreatedAt)
	size += IDMUS.Size(record.EmbeddingId)
	return size
}

// EmbeddingRecordMUS serializes EmbeddingRecords.
var EmbeddingRecordMUS = embeddingRecordMUS{}

type embeddingRecordMUS struct{}

func (embeddingRecordMUS) Marshal(embedding EmbeddingRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(embedding.Id, bs)
	n += stringSer.Marshal(embedding.SourceType, bs[n:])
	n += IDMUS.Marshal(embedding.SourceId, bs[n:])
	n += stringSer.Marshal(embedding.Content, bs[n:])
	n += vectorSer.Marshal(embedding.Vector, bs[n:])
	n += timeSer.Marshal(embedding.CreatedAt, bs[n:])
	return n
}

func (embeddingRecordMUS) Unmarshal(bs []byte) (embedding EmbeddingRecord, n int, err error) {
	var n1 int
	embedding.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return embedding, n, err
	}
	embedding.SourceType, n1, err = stringSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return embedding, n, err
	}
	embedding.SourceId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return embedding, n, err
	}
	embedding.Content, n1, err = stringSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return embedding, n, err
	}
	embedding.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return embedding, n, err
	}
	embedding.CreatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return embedding, n, err
}

func (embeddingRecordMUS) Size(embedding EmbeddingRecord) (size int) {
	size = IDMUS.Size(embedding.Id)
	size += stringSer.Size(embedding.SourceType)
	size += IDMUS.Size(embedding.SourceId)
	size += stringSer.Size(embedding.Content)
	size += vectorSer.Size(embedding.Vector)
	size += timeSer.Size(embedding.CreatedAt)
	return size
}
