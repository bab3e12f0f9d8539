// Package scan handles the page scans of the address books.
//
// Scans are JPEG images downloaded once into a local cache directory by
// Fetcher, named <PageID>.jpg. The convert pipeline never touches the
// network: when a scan is present in the cache it is used as extra evidence
// for column divider detection (DetectDivider), otherwise the divider is
// derived from OCR boxes alone. CropEntries cuts single entries out of a scan
// so that proofreaders can compare text against the print.
package scan
