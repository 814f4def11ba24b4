package util

import "errors"

var (
	ErrNoUsableText       = errors.New("no usable text on page")
	ErrEmbeddingShape     = errors.New("unexpected embedding shape")
	ErrEmbeddingCount     = errors.New("embedding count does not match input count")
	ErrCollectionMissing  = errors.New("collection does not exist")
	ErrNoPagesIngested    = errors.New("no pages could be ingested")
	ErrRecognitionFailure = errors.New("optical recognition failed")
)
