package s3store

import (
	stderrors "errors"

	"github.com/aws/aws-sdk-go/aws/awserr"
	awsrequest "github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/vireolabs/objectio/errors"
)

// annotate interprets err as an AWS request error and returns a
// version of it carrying a kind from the errors taxonomy, the
// operation, and the object path. Classification is a best guess based
// on Amazon's error-code descriptions.
func annotate(err error, op errors.Op, path string, msg string) error {
	return errors.E(op, errors.Path(path), kindFromAWS(err), msg, err)
}

func kindFromAWS(err error) errors.Kind {
	if awsrequest.IsErrorThrottle(err) {
		return errors.RateLimited
	}
	if awsrequest.IsErrorRetryable(err) {
		return errors.Unavailable
	}
	aerr, ok := getAWSError(err)
	if !ok {
		return errors.Unexpected
	}
	switch aerr.Code() {
	// Code NotFound is not documented, but it's what HeadObject
	// actually returns.
	case s3.ErrCodeNoSuchBucket, s3.ErrCodeNoSuchKey, "NoSuchVersion", "NotFound":
		return errors.NotFound
	case "AccessDenied", "AccountProblem", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errors.PermissionDenied
	case "InvalidRequest", "InvalidArgument", "EntityTooSmall", "EntityTooLarge",
		"KeyTooLong", "MethodNotAllowed", "InvalidRange":
		return errors.InvalidInput
	case "ExpiredToken", "ServiceUnavailable", "TokenRefreshRequired", "OperationAborted":
		return errors.Unavailable
	case "SlowDown", "RequestLimitExceeded":
		return errors.RateLimited
	}
	return errors.Unexpected
}

func getAWSError(err error) (awsError awserr.Error, found bool) {
	for err != nil {
		if e, ok := err.(awserr.Error); ok {
			return e, true
		}
		err = stderrors.Unwrap(err)
	}
	return nil, false
}
