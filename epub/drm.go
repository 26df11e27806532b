package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// encryptionXML represents the structure of META-INF/encryption.xml.
type encryptionXML struct {
	XMLName       xml.Name        `xml:"encryption"`
	EncryptedData []encryptedData `xml:"EncryptedData"`
}

type encryptedData struct {
	EncryptionMethod encryptionMethod `xml:"EncryptionMethod"`
	CipherData       cipherData       `xml:"CipherData"`
}

type encryptionMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type cipherData struct {
	CipherReference cipherReference `xml:"CipherReference"`
}

type cipherReference struct {
	URI string `xml:"URI,attr"`
}

// checkForDRM rejects packages whose content is locked behind DRM.
// Font obfuscation is tolerated; encrypted content documents are not.
func checkForDRM(zr *zip.Reader) error {
	for _, f := range zr.File {
		switch f.Name {
		case "META-INF/rights.xml":
			// Adobe ADEPT DRM indicator - always reject
			return ErrDRMProtected

		case "META-INF/encryption.xml":
			encrypted, err := hasEncryptedContent(f)
			if err != nil {
				// Unparseable encryption manifest: assume DRM
				return ErrDRMProtected
			}
			if encrypted {
				return ErrDRMProtected
			}
		}
	}
	return nil
}

// hasEncryptedContent reports whether encryption.xml declares any
// encrypted content documents, as opposed to obfuscated fonts.
func hasEncryptedContent(f *zip.File) (bool, error) {
	rc, err := f.Open()
	if err != nil {
		return false, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return false, err
	}

	var enc encryptionXML
	if err := xml.Unmarshal(data, &enc); err != nil {
		return false, err
	}

	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.EncryptionMethod.Algorithm) {
			continue
		}
		if isContentFile(ed.CipherData.CipherReference.URI) {
			return true, nil
		}
	}

	return false, nil
}

// isFontObfuscation returns true for the Adobe and IDPF font
// obfuscation algorithms, which are not DRM.
func isFontObfuscation(algorithm string) bool {
	if strings.Contains(algorithm, "adobe.com") && strings.Contains(algorithm, "obfuscation") {
		return true
	}
	if strings.Contains(algorithm, "idpf.org") && strings.Contains(algorithm, "obfuscation") {
		return true
	}
	return false
}

// isContentFile returns true if the URI refers to a content document
// that would indicate DRM if encrypted.
func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)

	if strings.HasSuffix(uri, ".xhtml") ||
		strings.HasSuffix(uri, ".html") ||
		strings.HasSuffix(uri, ".htm") ||
		strings.HasSuffix(uri, ".xml") {
		return true
	}

	if strings.HasSuffix(uri, ".css") {
		return true
	}

	return false
}
