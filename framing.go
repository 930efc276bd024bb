package engine

// FramingKind tags which of the three body-framing strategies applies
// to a message (spec.md §3 "Framing descriptor").
type FramingKind int

const (
	FramingContentLength FramingKind = iota
	FramingChunked
	FramingHTTP10
	FramingNoBody
)

// Framing is the derived descriptor for how many body bytes belong to
// a message, computed once from a head event's headers (spec.md §3).
type Framing struct {
	Kind          FramingKind
	ContentLength int // valid when Kind == FramingContentLength
}

// resolveFraming implements spec.md §3's framing rules and §4.F/§9's
// HEAD-response special case and §6 ambiguous-framing rejection.
//
// requestMethod is the method of the in-flight request this message
// answers (nil/empty when resolving framing for a Request itself, or
// for a response when no request method is tracked yet).
func resolveFraming(forResponse bool, requestMethod []byte, statusCode int, httpVersion []byte, headers []Header) (Framing, error) {
	if forResponse {
		if isHead(requestMethod) {
			return Framing{Kind: FramingNoBody}, nil
		}
		if statusCode >= 100 && statusCode < 200 {
			return Framing{Kind: FramingNoBody}, nil
		}
		if statusCode == 204 || statusCode == 304 {
			return Framing{Kind: FramingNoBody}, nil
		}
	}

	clValues := HeadersAll(headers, "content-length")
	teValue := Headers(headers, "transfer-encoding")
	chunked := teValue != nil && hasToken(teValue, "chunked")

	if len(clValues) > 0 && chunked {
		return Framing{}, newRemoteProtocolErrorStatus(
			"both Content-Length and Transfer-Encoding: chunked present (ambiguous framing)", 400)
	}

	if chunked {
		return Framing{Kind: FramingChunked}, nil
	}

	if len(clValues) > 0 {
		// Multiple Content-Length headers must agree (RFC 7230 §3.3.2);
		// disagreement is as ambiguous as Content-Length + chunked.
		n, err := parseContentLength(clValues[0])
		if err != nil {
			return Framing{}, err
		}
		for _, v := range clValues[1:] {
			m, err := parseContentLength(v)
			if err != nil || m != n {
				return Framing{}, newRemoteProtocolErrorStatus("conflicting Content-Length headers", 400)
			}
		}
		return Framing{Kind: FramingContentLength, ContentLength: n}, nil
	}

	if forResponse && !isHTTP11(httpVersion) {
		return Framing{Kind: FramingHTTP10}, nil
	}
	if forResponse {
		// HTTP/1.1 response with neither header: read-until-close is
		// the historical fallback the teacher's header.go models as
		// "identity" framing (contentLength == -2).
		return Framing{Kind: FramingHTTP10}, nil
	}

	// Request with no body-indicating headers: no body.
	return Framing{Kind: FramingNoBody}, nil
}

func isHead(method []byte) bool {
	return len(method) == len(strHead) && equalFoldASCII(method, "head")
}
