package s3

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrBucketNotFound = errors.New("s3: bucket not found")
	ErrAccessDenied   = errors.New("s3: access denied")
	ErrUploadFailed   = errors.New("s3: upload failed")
	ErrNotInitialized = errors.New("s3: transport not initialized")
)

// wrapError maps S3 API errors onto the sentinels above.
// The original error is formatted with %v so callers match on sentinels only.
func wrapError(err, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return fmt.Errorf("%w: %v", ErrBucketNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
