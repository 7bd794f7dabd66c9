package codegen

import "golang.org/x/text/unicode/norm"

// addressBase canonicalizes a choice-name to NFC at the single point where
// address templates are rendered. Addresses are identity keys in external
// traces; without this, visually identical accented identifiers could
// produce distinct byte sequences depending on how the frontend encoded
// them, and the same model would address different choices on different
// backends.
func addressBase(name string) string {
	return norm.NFC.String(name)
}
