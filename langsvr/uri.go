package langsvr

import "strings"

const filePrefix = "file://"

// normalizeUri canonicalizes a file:// URI so the same document always
// maps to the same documentCache key regardless of how the client
// percent-encodes it or cases a Windows drive letter, ported from
// CslLangSvr.cpp's normalizeUri: percent-encoding is lower-cased and
// re-applied consistently, a missing leading slash before a Windows
// drive letter is added, and a Windows drive letter (and its percent-
// encoded colon) is lower-cased. Non-file:// URIs are returned as-is,
// the same fallback the original takes when the "file://" prefix isn't
// present (the loop still starts at index 7, same as upstream).
func normalizeUri(uri string) string {
	if !strings.HasPrefix(uri, filePrefix) {
		return uri
	}

	i := len(filePrefix)
	hasLeadingSlash := i < len(uri) && uri[i] == '/'
	driveIdx := i
	if hasLeadingSlash {
		driveIdx = i + 1
	}

	drivePattern := false
	if driveIdx+1 < len(uri) && isAlpha(uri[driveIdx]) {
		if uri[driveIdx+1] == ':' {
			drivePattern = true
		} else if uri[driveIdx+1] == '%' && driveIdx+3 < len(uri) && uri[driveIdx+2] == '3' && (uri[driveIdx+3] == 'A' || uri[driveIdx+3] == 'a') {
			drivePattern = true
		}
	}

	var pathOut strings.Builder
	if !hasLeadingSlash && drivePattern {
		pathOut.WriteByte('/')
	}

	for ; i < len(uri); i++ {
		c := uri[i]
		if c == '%' && i+2 < len(uri) && isHex(uri[i+1]) && isHex(uri[i+2]) {
			pathOut.WriteByte('%')
			pathOut.WriteByte(toLowerASCII(uri[i+1]))
			pathOut.WriteByte(toLowerASCII(uri[i+2]))
			i += 2
		} else if isAllowedURIChar(c) {
			pathOut.WriteByte(c)
		} else {
			pathOut.WriteByte('%')
			pathOut.WriteString(hexByte(c))
		}
	}

	path := []byte(pathOut.String())
	lowerCaseWindowsPath := len(path) >= 5 && path[0] == '/' && isAlpha(path[1]) &&
		path[2] == '%' && path[3] == '3' && (path[4] == 'A' || path[4] == 'a')
	if lowerCaseWindowsPath {
		for j := 0; j < len(path); j++ {
			if path[j] == '%' && j+2 < len(path) {
				j += 2
				continue
			}
			path[j] = toLowerASCII(path[j])
		}
	}

	return filePrefix + string(path)
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isAllowedURIChar(c byte) bool {
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
		return true
	}
	switch c {
	case '-', '.', '_', '~',
		'/', '?', '#', '[', ']', '@',
		'!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	default:
		return false
	}
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func hexByte(c byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[(c>>4)&0xF], digits[c&0xF]})
}
