/*
Package importurl converts between the textual form of a Dhall remote
import target (scheme, authority, root-first path, optional query) and
its parsed ast.ImportURL. It never fetches anything over the network;
resolving an import is out of scope for this module.

The split between Parse (text -> struct) and Format (struct -> text)
mirrors a URL-scheme package that parses its own scheme into a struct
and renders it back with a String method, adapted here to Dhall's URL
shape rather than a content-addressed one.
*/
package importurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dhall-lang/dhall-cbor/ast"
)

// Parse parses a Dhall http(s) import URL, e.g.
// "https://example.com/foo/bar.dhall?branch=main", into its component
// parts. It does not parse the optional `using <headerType>` suffix;
// callers attach Headers separately once the header expression itself
// has been parsed.
func Parse(raw string) (*ast.ImportURL, error) {
	https := strings.HasPrefix(raw, "https://")
	if !https && !strings.HasPrefix(raw, "http://") {
		return nil, errors.New("importurl: missing http:// or https:// scheme")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("importurl: %w", err)
	}
	if u.User != nil {
		return nil, errors.New("importurl: userinfo is not a valid part of a Dhall import URL")
	}
	if u.Fragment != "" {
		return nil, errors.New("importurl: fragments are not allowed in a Dhall import URL")
	}

	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return nil, errors.New("importurl: path must have at least a file component")
	}
	dir := segments[:len(segments)-1]
	file := segments[len(segments)-1]
	if file == "" {
		return nil, errors.New("importurl: path must not end in a slash")
	}

	out := &ast.ImportURL{
		HTTPS:     https,
		Authority: u.Host,
		Directory: append([]string(nil), dir...),
		File:      file,
	}
	if u.RawQuery != "" {
		q := u.RawQuery
		out.Query = &q
	}
	return out, nil
}

// Format renders an ast.ImportURL back to text, in the same order
// Parse reads it. It does not render a `using` header clause; that is
// the caller's responsibility once it has pretty-printed Headers.
func Format(u *ast.ImportURL) string {
	var sb strings.Builder
	if u.HTTPS {
		sb.WriteString("https://")
	} else {
		sb.WriteString("http://")
	}
	sb.WriteString(u.Authority)
	for _, seg := range u.Directory {
		sb.WriteByte('/')
		sb.WriteString(seg)
	}
	sb.WriteByte('/')
	sb.WriteString(u.File)
	if u.Query != nil {
		sb.WriteByte('?')
		sb.WriteString(*u.Query)
	}
	return sb.String()
}
