package firewall

import (
	"errors"
	"strings"

	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const (
	codeDuplicate = "InvalidPermission.Duplicate"
	codeNotFound  = "InvalidPermission.NotFound"
)

func isDuplicate(err error) bool {
	return hasErrorCode(err, codeDuplicate, "the specified rule", "already exists")
}

func isNotFound(err error) bool {
	return hasErrorCode(err, codeNotFound, "the specified rule does not exist")
}

// hasErrorCode prefers the EC2 error code. Errors without one fall back to
// matching every fragment against the message, which depends on the wording
// EC2 uses and may break if that wording changes.
func hasErrorCode(err error, code string, fragments ...string) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() != "" {
		return apiErr.ErrorCode() == code
	}
	msg := strings.ToLower(err.Error())
	for _, f := range fragments {
		if !strings.Contains(msg, strings.ToLower(f)) {
			return false
		}
	}
	return true
}

func httpStatus(md middleware.Metadata) int {
	if raw, ok := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response); ok && raw != nil && raw.Response != nil {
		return raw.StatusCode
	}
	return 0
}
