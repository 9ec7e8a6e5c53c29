package release

import (
	"bytes"

	"go.mozilla.org/pkcs7"

	"github.com/00zhengfu00/modlink/internal/linkerr"
)

// VerifyConfigSignature checks a detached PKCS#7 signature over a
// plugins-configuration file's raw bytes, per SPEC_FULL.md's optional
// signed-configuration hook. Verification failure or a content digest
// mismatch against configBytes is reported as a plugin-config error;
// it never silently accepts an unsigned or mismatched file.
func VerifyConfigSignature(configBytes, signature []byte) error {
	p7, err := pkcs7.Parse(signature)
	if err != nil {
		return linkerr.Wrap(linkerr.KindPluginConfig, err)
	}
	if p7.Content == nil {
		// Detached signature: the signed content is the configuration file.
		p7.Content = configBytes
	}
	if err := p7.Verify(); err != nil {
		return linkerr.Wrap(linkerr.KindPluginConfig, err)
	}
	if p7.Content != nil && !bytes.Equal(p7.Content, configBytes) {
		return linkerr.New(linkerr.KindPluginConfig, "signed content does not match plugins-configuration file")
	}
	return nil
}
