// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	slicePDrΔzJYpPi2YPuktWFFs7wΞΞ = ord.NewSliceSer[float32](varint.Float32)
	sliceTvmG80IhvKGVdiQpt0h8rwΞΞ = ord.NewSliceSer[MedicalEntity](MedicalEntityMUS)
	slicebu4roΔVCy4D4AWLnw9olAAΞΞ = ord.NewSliceSer[string](ord.String)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var DocumentTypeMUS = documentTypeMUS{}

type documentTypeMUS struct{}

func (s documentTypeMUS) Marshal(v DocumentType, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s documentTypeMUS) Unmarshal(bs []byte) (v DocumentType, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = DocumentType(tmp)
	return
}

func (s documentTypeMUS) Size(v DocumentType) (size int) {
	return ord.String.Size(string(v))
}

func (s documentTypeMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var MedicalEntityMUS = medicalEntityMUS{}

type medicalEntityMUS struct{}

func (s medicalEntityMUS) Marshal(v MedicalEntity, bs []byte) (n int) {
	n = ord.String.Marshal(v.Text, bs)
	n += ord.String.Marshal(v.Label, bs[n:])
	n += varint.Float32.Marshal(v.Confidence, bs[n:])
	n += varint.Int.Marshal(v.Start, bs[n:])
	return n + varint.Int.Marshal(v.End, bs[n:])
}

func (s medicalEntityMUS) Unmarshal(bs []byte) (v MedicalEntity, n int, err error) {
	v.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Label, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Confidence, n1, err = varint.Float32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Start, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.End, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (s medicalEntityMUS) Size(v MedicalEntity) (size int) {
	size = ord.String.Size(v.Text)
	size += ord.String.Size(v.Label)
	size += varint.Float32.Size(v.Confidence)
	size += varint.Int.Size(v.Start)
	return size + varint.Int.Size(v.End)
}

func (s medicalEntityMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Float32.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}

var DocumentMetadataMUS = documentMetadataMUS{}

type documentMetadataMUS struct{}

func (s documentMetadataMUS) Marshal(v DocumentMetadata, bs []byte) (n int) {
	n = raw.TimeUnixMicro.Marshal(v.UploadedAt, bs)
	n += ord.String.Marshal(v.PatientID, bs[n:])
	n += DocumentTypeMUS.Marshal(v.DocumentType, bs[n:])
	n += slicebu4roΔVCy4D4AWLnw9olAAΞΞ.Marshal(v.Tags, bs[n:])
	return n + ord.Bool.Marshal(v.Processed, bs[n:])
}

func (s documentMetadataMUS) Unmarshal(bs []byte) (v DocumentMetadata, n int, err error) {
	v.UploadedAt, n, err = raw.TimeUnixMicro.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.PatientID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DocumentType, n1, err = DocumentTypeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Tags, n1, err = slicebu4roΔVCy4D4AWLnw9olAAΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Processed, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMetadataMUS) Size(v DocumentMetadata) (size int) {
	size = raw.TimeUnixMicro.Size(v.UploadedAt)
	size += ord.String.Size(v.PatientID)
	size += DocumentTypeMUS.Size(v.DocumentType)
	size += slicebu4roΔVCy4D4AWLnw9olAAΞΞ.Size(v.Tags)
	return size + ord.Bool.Size(v.Processed)
}

func (s documentMetadataMUS) Skip(bs []byte) (n int, err error) {
	n, err = raw.TimeUnixMicro.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DocumentTypeMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicebu4roΔVCy4D4AWLnw9olAAΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	return
}

var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Marshal(v.Vector, bs[n:])
	n += sliceTvmG80IhvKGVdiQpt0h8rwΞΞ.Marshal(v.Entities, bs[n:])
	n += DocumentMetadataMUS.Marshal(v.Metadata, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.InsertedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Entities, n1, err = sliceTvmG80IhvKGVdiQpt0h8rwΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = DocumentMetadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Content)
	size += slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Size(v.Vector)
	size += sliceTvmG80IhvKGVdiQpt0h8rwΞΞ.Size(v.Entities)
	size += DocumentMetadataMUS.Size(v.Metadata)
	size += raw.TimeUnixMicro.Size(v.InsertedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sliceTvmG80IhvKGVdiQpt0h8rwΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = DocumentMetadataMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ChunkMetadataMUS = chunkMetadataMUS{}

type chunkMetadataMUS struct{}

func (s chunkMetadataMUS) Marshal(v ChunkMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(v.PatientID, bs)
	n += DocumentTypeMUS.Marshal(v.DocumentType, bs[n:])
	n += ord.String.Marshal(v.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(v.Dimension, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.CreatedAt, bs[n:])
}

func (s chunkMetadataMUS) Unmarshal(bs []byte) (v ChunkMetadata, n int, err error) {
	v.PatientID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocumentType, n1, err = DocumentTypeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EmbeddingModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Dimension, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMetadataMUS) Size(v ChunkMetadata) (size int) {
	size = ord.String.Size(v.PatientID)
	size += DocumentTypeMUS.Size(v.DocumentType)
	size += ord.String.Size(v.EmbeddingModel)
	size += varint.Int.Size(v.Dimension)
	return size + raw.TimeUnixMicro.Size(v.CreatedAt)
}

func (s chunkMetadataMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = DocumentTypeMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(v.TotalChunks, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Marshal(v.Vector, bs[n:])
	n += varint.Int.Marshal(v.WordCount, bs[n:])
	return n + ChunkMetadataMUS.Marshal(v.Metadata, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.WordCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = ChunkMetadataMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentId)
	size += varint.Int.Size(v.ChunkIndex)
	size += varint.Int.Size(v.TotalChunks)
	size += ord.String.Size(v.Text)
	size += slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Size(v.Vector)
	size += varint.Int.Size(v.WordCount)
	return size + ChunkMetadataMUS.Size(v.Metadata)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slicePDrΔzJYpPi2YPuktWFFs7wΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ChunkMetadataMUS.Skip(bs[n:])
	n += n1
	return
}
