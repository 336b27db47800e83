// Copyright 2026 The gos3 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package s3test provides an in-memory S3 server for tests.
//
// The server speaks enough of the S3 wire protocol for client tests:
// bucket create/delete/list, object put/get/head/delete with ranges and
// metadata, server-side copy, tagging, listings in both protocol
// versions, and bucket location. With SetCredentials it also verifies
// request signatures, both header-signed and presigned, so tests can
// prove a client signs correctly without talking to a real provider.
//
// Requests use path addressing; bucket subdomains of 127.0.0.1 do not
// resolve.
package s3test

import (
	"crypto/md5"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxListKeys is the default listing page size, matching S3.
const maxListKeys = 1000

type object struct {
	data         []byte
	contentType  string
	etag         string
	lastModified time.Time
	metadata     map[string]string
	tags         []tagEntry
}

type tagEntry struct {
	Key   string
	Value string
}

type bucket struct {
	created time.Time
	objects map[string]*object
}

// Server is an in-memory S3 double listening on a local port.
type Server struct {
	// Now supplies the server's clock, used to judge presigned URL
	// validity windows. Defaults to time.Now.
	Now func() time.Time

	// PageSize caps listing pages when a request does not set max-keys.
	// Defaults to 1000, like S3. Tests lower it to force paging.
	PageSize int

	ts *httptest.Server

	mu      sync.RWMutex
	buckets map[string]*bucket

	accessKey string
	secretKey string
	region    string
}

// New starts a Server. The caller must Close it.
func New() *Server {
	s := &Server{
		Now:      time.Now,
		PageSize: maxListKeys,
		buckets:  make(map[string]*bucket),
	}
	s.ts = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// Close shuts the server down.
func (s *Server) Close() { s.ts.Close() }

// URL returns the server's base URL, http://127.0.0.1:port.
func (s *Server) URL() string { return s.ts.URL }

// SetCredentials enables signature verification. Requests must then be
// signed with accessKey/secretKey for region, or carry a valid
// presigned query set; anything else is rejected with a 403.
func (s *Server) SetCredentials(accessKey, secretKey, region string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessKey = accessKey
	s.secretKey = secretKey
	s.region = region
}

// CreateBucket seeds a bucket directly, bypassing the wire protocol.
func (s *Server) CreateBucket(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[name]; !ok {
		s.buckets[name] = &bucket{created: time.Now().UTC(), objects: make(map[string]*object)}
	}
}

// PutObject seeds an object directly, creating the bucket if needed.
func (s *Server) PutObject(bucketName, key string, data []byte) {
	s.CreateBucket(bucketName)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucketName].objects[key] = newObject(data, "application/octet-stream", nil)
}

// Object returns a stored object's bytes for test assertions.
func (s *Server) Object(bucketName, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[bucketName]
	if !ok {
		return nil, false
	}
	o, ok := b.objects[key]
	if !ok {
		return nil, false
	}
	return o.data, true
}

func newObject(data []byte, contentType string, metadata map[string]string) *object {
	return &object{
		data:         data,
		contentType:  contentType,
		etag:         fmt.Sprintf("%q", md5.Sum(data)),
		lastModified: time.Now().UTC(),
		metadata:     metadata,
	}
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("x-amz-request-id", uuid.NewString())

	if err := s.authorize(r); err != nil {
		s.writeError(w, err.status, err.code, err.message)
		return
	}

	bucketName, key := splitObjectPath(r.URL.Path)
	switch {
	case bucketName == "":
		s.serveService(w, r)
	case key == "":
		s.serveBucket(w, r, bucketName)
	default:
		s.serveObject(w, r, bucketName, key)
	}
}

// splitObjectPath splits /bucket/key/with/slashes into its two parts.
func splitObjectPath(path string) (bucketName, key string) {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

func (s *Server) serveService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed on the service endpoint")
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := xmlBucketList{Owner: xmlOwner{ID: "s3test", DisplayName: "s3test"}}
	names := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Buckets = append(doc.Buckets, xmlBucket{Name: name, CreationDate: s.buckets[name].created.Format(time.RFC3339)})
	}
	writeXML(w, http.StatusOK, doc)
}

func (s *Server) serveBucket(w http.ResponseWriter, r *http.Request, name string) {
	query := r.URL.Query()
	switch {
	case r.Method == http.MethodPut:
		s.createBucket(w, r, name)
	case r.Method == http.MethodDelete:
		s.deleteBucket(w, name)
	case r.Method == http.MethodHead:
		s.mu.RLock()
		_, ok := s.buckets[name]
		s.mu.RUnlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && query.Has("location"):
		s.bucketLocation(w, name)
	case r.Method == http.MethodGet:
		s.listObjects(w, name, query)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed on a bucket")
	}
}

func (s *Server) createBucket(w http.ResponseWriter, r *http.Request, name string) {
	// The body may carry a CreateBucketConfiguration; its location must
	// agree with the server's region when verification is on.
	body, _ := io.ReadAll(r.Body)
	if len(body) > 0 && s.region != "" {
		var cfg struct {
			XMLName            xml.Name `xml:"CreateBucketConfiguration"`
			LocationConstraint string   `xml:"LocationConstraint"`
		}
		if err := xml.Unmarshal(body, &cfg); err != nil {
			s.writeError(w, http.StatusBadRequest, "MalformedXML", "cannot parse bucket configuration")
			return
		}
		if cfg.LocationConstraint != "" && cfg.LocationConstraint != s.region {
			s.writeError(w, http.StatusBadRequest, "InvalidLocationConstraint", "location does not match this endpoint")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[name]; ok {
		s.writeError(w, http.StatusConflict, "BucketAlreadyExists", "bucket already exists")
		return
	}
	s.buckets[name] = &bucket{created: time.Now().UTC(), objects: make(map[string]*object)}
	w.Header().Set("Location", "/"+name)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) deleteBucket(w http.ResponseWriter, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[name]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchBucket", "the specified bucket does not exist")
		return
	}
	if len(b.objects) > 0 {
		s.writeError(w, http.StatusConflict, "BucketNotEmpty", "the bucket is not empty")
		return
	}
	delete(s.buckets, name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) bucketLocation(w http.ResponseWriter, name string) {
	s.mu.RLock()
	_, ok := s.buckets[name]
	region := s.region
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchBucket", "the specified bucket does not exist")
		return
	}
	if region == "us-east-1" {
		region = ""
	}
	writeXML(w, http.StatusOK, xmlLocation{Value: region})
}

func (s *Server) serveObject(w http.ResponseWriter, r *http.Request, bucketName, key string) {
	tagRequest := r.URL.Query().Has("tagging")
	switch {
	case r.Method == http.MethodPut && tagRequest:
		s.putTagging(w, r, bucketName, key)
	case r.Method == http.MethodGet && tagRequest:
		s.getTagging(w, bucketName, key)
	case r.Method == http.MethodDelete && tagRequest:
		s.deleteTagging(w, bucketName, key)
	case r.Method == http.MethodPut && r.Header.Get("X-Amz-Copy-Source") != "":
		s.copyObject(w, r, bucketName, key)
	case r.Method == http.MethodPut:
		s.putObject(w, r, bucketName, key)
	case r.Method == http.MethodGet, r.Method == http.MethodHead:
		s.getObject(w, r, bucketName, key)
	case r.Method == http.MethodDelete:
		s.deleteObject(w, bucketName, key)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed on an object")
	}
}

func (s *Server) putObject(w http.ResponseWriter, r *http.Request, bucketName, key string) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "IncompleteBody", "could not read the request body")
		return
	}
	if err := verifyPayloadHash(r, data); err != nil {
		s.writeError(w, http.StatusBadRequest, err.code, err.message)
		return
	}

	var metadata map[string]string
	for name, values := range r.Header {
		lower := strings.ToLower(name)
		if rest, ok := strings.CutPrefix(lower, "x-amz-meta-"); ok && len(values) > 0 {
			if metadata == nil {
				metadata = map[string]string{}
			}
			metadata[rest] = values[0]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucketName]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchBucket", "the specified bucket does not exist")
		return
	}
	obj := newObject(data, r.Header.Get("Content-Type"), metadata)
	b.objects[key] = obj
	w.Header().Set("ETag", obj.etag)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) copyObject(w http.ResponseWriter, r *http.Request, bucketName, key string) {
	source := r.Header.Get("X-Amz-Copy-Source")
	if unescaped, err := url.PathUnescape(source); err == nil {
		source = unescaped
	}
	srcBucket, srcKey := splitObjectPath(source)

	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.buckets[srcBucket]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchBucket", "the copy source bucket does not exist")
		return
	}
	src, ok := sb.objects[srcKey]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchKey", "the copy source key does not exist")
		return
	}
	db, ok := s.buckets[bucketName]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchBucket", "the specified bucket does not exist")
		return
	}
	dst := newObject(append([]byte(nil), src.data...), src.contentType, src.metadata)
	db.objects[key] = dst
	writeXML(w, http.StatusOK, xmlCopyResult{
		ETag:         dst.etag,
		LastModified: dst.lastModified.Format(time.RFC3339),
	})
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request, bucketName, key string) {
	s.mu.RLock()
	obj, ok := s.lookupObject(bucketName, key)
	s.mu.RUnlock()
	if !ok {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.writeError(w, http.StatusNotFound, "NoSuchKey", "the specified key does not exist")
		return
	}

	data := obj.data
	status := http.StatusOK
	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		start, end, ok := parseRange(rangeHeader, int64(len(data)))
		if !ok {
			s.writeError(w, http.StatusRequestedRangeNotSatisfiable, "InvalidRange", "the requested range is not satisfiable")
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
		data = data[start : end+1]
		status = http.StatusPartialContent
	}

	w.Header().Set("ETag", obj.etag)
	w.Header().Set("Content-Type", obj.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Last-Modified", obj.lastModified.Format(http.TimeFormat))
	for name, value := range obj.metadata {
		w.Header().Set("x-amz-meta-"+name, value)
	}
	w.WriteHeader(status)
	if r.Method == http.MethodGet {
		_, _ = w.Write(data)
	}
}

func (s *Server) deleteObject(w http.ResponseWriter, bucketName, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[bucketName]; ok {
		delete(b.objects, key)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putTagging(w http.ResponseWriter, r *http.Request, bucketName, key string) {
	body, _ := io.ReadAll(r.Body)
	var doc xmlTagging
	if err := xml.Unmarshal(body, &doc); err != nil {
		s.writeError(w, http.StatusBadRequest, "MalformedXML", "cannot parse the tagging document")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.lookupObject(bucketName, key)
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchKey", "the specified key does not exist")
		return
	}
	obj.tags = doc.Tags
	w.WriteHeader(http.StatusOK)
}

func (s *Server) getTagging(w http.ResponseWriter, bucketName, key string) {
	s.mu.RLock()
	obj, ok := s.lookupObject(bucketName, key)
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchKey", "the specified key does not exist")
		return
	}
	writeXML(w, http.StatusOK, xmlTagging{Tags: obj.tags})
}

func (s *Server) deleteTagging(w http.ResponseWriter, bucketName, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.lookupObject(bucketName, key)
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchKey", "the specified key does not exist")
		return
	}
	obj.tags = nil
	w.WriteHeader(http.StatusNoContent)
}

// lookupObject requires s.mu held.
func (s *Server) lookupObject(bucketName, key string) (*object, bool) {
	b, ok := s.buckets[bucketName]
	if !ok {
		return nil, false
	}
	obj, ok := b.objects[key]
	return obj, ok
}

// parseRange handles the two range forms clients send, bytes=a-b and
// bytes=a-, both inclusive. The end is clamped to the object size.
func parseRange(value string, size int64) (start, end int64, ok bool) {
	spec, found := strings.CutPrefix(value, "bytes=")
	if !found {
		return 0, 0, false
	}
	first, last, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}
	end = size - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end >= size {
			end = size - 1
		}
	}
	return start, end, true
}

func (s *Server) listObjects(w http.ResponseWriter, name string, query url.Values) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[name]
	if !ok {
		s.writeError(w, http.StatusNotFound, "NoSuchBucket", "the specified bucket does not exist")
		return
	}

	prefix := query.Get("prefix")
	delimiter := query.Get("delimiter")
	maxKeys := s.PageSize
	if v := query.Get("max-keys"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxKeys = n
		}
	}

	v2 := query.Get("list-type") == "2"
	after := ""
	if v2 {
		// The continuation token is the last key of the previous page;
		// start-after applies to the first page only.
		after = query.Get("continuation-token")
		if after == "" {
			after = query.Get("start-after")
		}
	} else {
		after = query.Get("marker")
	}

	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) && key > after {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	page := xmlListing{
		Name:      name,
		Prefix:    prefix,
		Delimiter: delimiter,
		MaxKeys:   maxKeys,
	}
	seenPrefixes := map[string]bool{}
	count := 0
	lastKey := ""
	for _, key := range keys {
		if delimiter != "" {
			rest := key[len(prefix):]
			if i := strings.Index(rest, delimiter); i >= 0 {
				common := prefix + rest[:i+len(delimiter)]
				if seenPrefixes[common] {
					// Part of a group already on this page; the page
					// position still advances past it.
					lastKey = key
					continue
				}
				if count >= maxKeys {
					page.IsTruncated = true
					break
				}
				seenPrefixes[common] = true
				page.CommonPrefixes = append(page.CommonPrefixes, xmlPrefix{Prefix: common})
				count++
				lastKey = key
				continue
			}
		}
		if count >= maxKeys {
			page.IsTruncated = true
			break
		}
		obj := b.objects[key]
		page.Contents = append(page.Contents, xmlObject{
			Key:          key,
			LastModified: obj.lastModified.Format(time.RFC3339),
			ETag:         obj.etag,
			Size:         int64(len(obj.data)),
			StorageClass: "STANDARD",
		})
		count++
		lastKey = key
	}

	if v2 {
		page.KeyCount = count
		if page.IsTruncated {
			page.NextContinuationToken = lastKey
		}
	} else if page.IsTruncated && delimiter != "" {
		// V1 reports NextMarker only for delimited listings; otherwise
		// clients page from the last returned key.
		page.NextMarker = lastKey
	}
	writeXML(w, http.StatusOK, page)
}

func writeXML(w http.ResponseWriter, status int, doc interface{}) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, xml.Header)
	_ = xml.NewEncoder(w).Encode(doc)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, xml.Header)
	_ = xml.NewEncoder(w).Encode(xmlErrorDoc{
		Code:      code,
		Message:   message,
		RequestID: uuid.NewString(),
	})
}

type xmlErrorDoc struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	RequestID string   `xml:"RequestId"`
}

type xmlOwner struct {
	ID          string `xml:"ID"`
	DisplayName string `xml:"DisplayName"`
}

type xmlBucket struct {
	Name         string `xml:"Name"`
	CreationDate string `xml:"CreationDate"`
}

type xmlBucketList struct {
	XMLName xml.Name    `xml:"ListAllMyBucketsResult"`
	Owner   xmlOwner    `xml:"Owner"`
	Buckets []xmlBucket `xml:"Buckets>Bucket"`
}

type xmlObject struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

type xmlPrefix struct {
	Prefix string `xml:"Prefix"`
}

type xmlListing struct {
	XMLName               xml.Name    `xml:"ListBucketResult"`
	Name                  string      `xml:"Name"`
	Prefix                string      `xml:"Prefix,omitempty"`
	Delimiter             string      `xml:"Delimiter,omitempty"`
	MaxKeys               int         `xml:"MaxKeys"`
	IsTruncated           bool        `xml:"IsTruncated"`
	KeyCount              int         `xml:"KeyCount,omitempty"`
	NextContinuationToken string      `xml:"NextContinuationToken,omitempty"`
	NextMarker            string      `xml:"NextMarker,omitempty"`
	Contents              []xmlObject `xml:"Contents"`
	CommonPrefixes        []xmlPrefix `xml:"CommonPrefixes"`
}

type xmlLocation struct {
	XMLName xml.Name `xml:"LocationConstraint"`
	Value   string   `xml:",chardata"`
}

type xmlTagging struct {
	XMLName xml.Name   `xml:"Tagging"`
	Tags    []tagEntry `xml:"TagSet>Tag"`
}

type xmlCopyResult struct {
	XMLName      xml.Name `xml:"CopyObjectResult"`
	ETag         string   `xml:"ETag"`
	LastModified string   `xml:"LastModified"`
}
