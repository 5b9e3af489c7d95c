package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strings"
)

// hmacHexLen is the length of a hex encoded SHA-256 digest.
const hmacHexLen = sha256.Size * 2

var (
	keyEscaper   = strings.NewReplacer("%", "%25", "&", "%26", "=", "%3D")
	valueEscaper = strings.NewReplacer("%", "%25", "&", "%26")
)

// ValidateHMAC reports whether q carries a valid callback signature. Keys
// with more than one value are treated as array parameters.
func (c *Client) ValidateHMAC(q url.Values) bool {
	return c.ValidateHMACParams(valuesToParams(q))
}

// ValidateHMACParams reports whether params carries a valid callback
// signature. Values may be strings, slices or arrays (array parameters), or
// scalars which are formatted with fmt.
//
// Any malformed input, including a missing or non-hex hmac, yields false.
func (c *Client) ValidateHMACParams(params map[string]any) bool {
	given, ok := params["hmac"].(string)
	if !ok || len(given) != hmacHexLen {
		return false
	}
	actual, err := hex.DecodeString(given)
	if err != nil {
		return false
	}

	expected := c.digest(canonicalString(params))
	if len(actual) != len(expected) {
		return false
	}
	return hmac.Equal(actual, expected)
}

// Sign returns the hex HMAC Shopify would attach to q.
func (c *Client) Sign(q url.Values) string {
	return c.SignParams(valuesToParams(q))
}

// SignParams returns the hex HMAC Shopify would attach to params. The hmac
// and signature keys are ignored.
func (c *Client) SignParams(params map[string]any) string {
	return hex.EncodeToString(c.digest(canonicalString(params)))
}

func (c *Client) digest(msg string) []byte {
	mac := hmac.New(sha256.New, []byte(c.sharedSecret))
	_, _ = mac.Write([]byte(msg))
	return mac.Sum(nil)
}

// canonicalString builds the sorted, escaped key=value list Shopify signs.
// hmac and the legacy signature parameter are excluded.
func canonicalString(params map[string]any) string {
	parts := make([]string, 0, len(params))
	for k, v := range params {
		if k == "hmac" || k == "signature" {
			continue
		}
		parts = append(parts, keyEscaper.Replace(k)+"="+valueEscaper.Replace(paramString(v)))
	}
	slices.Sort(parts)
	return strings.Join(parts, "&")
}

// paramString renders a parameter value the way Shopify does before signing.
// Arrays of any element type become ["a", "b"] and nil becomes null.
func paramString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		return arrayString(v)
	case []any:
		s := make([]string, len(v))
		for i, e := range v {
			s[i] = fmt.Sprint(e)
		}
		return arrayString(s)
	case nil:
		return "null"
	case []byte:
		return string(v)
	}

	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k == reflect.Slice || k == reflect.Array {
		s := make([]string, rv.Len())
		for i := range s {
			s[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return arrayString(s)
	}
	return fmt.Sprint(v)
}

func arrayString(s []string) string {
	return `["` + strings.Join(s, `", "`) + `"]`
}

// valuesToParams converts q without touching it. Single values stay scalar so
// the canonical form matches what Shopify signed.
func valuesToParams(q url.Values) map[string]any {
	params := make(map[string]any, len(q))
	for k, vs := range q {
		switch len(vs) {
		case 0:
			params[k] = ""
		case 1:
			params[k] = vs[0]
		default:
			params[k] = append([]string(nil), vs...)
		}
	}
	return params
}
