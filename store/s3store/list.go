package s3store

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/vireolabs/objectio/store"
)

func (a *accessor) List(ctx context.Context, id store.ObjectID, opts store.ListOpts) store.Lister {
	l := &lister{
		a:      a,
		ctx:    ctx,
		id:     id.AsDir(),
		prefix: a.key(id.AsDir()),
		opts:   opts,
	}
	if opts.StartAfter != "" {
		l.startAfter = a.key(opts.StartAfter)
	}
	return l
}

// lister enumerates one directory via paginated ListObjectsV2
// requests. Without Recursive it uses the "/" delimiter, so immediate
// children arrive as Contents and child directories as CommonPrefixes.
// Pages are fetched only as Scan consumes them; an abandoned
// enumeration stops issuing requests.
type lister struct {
	a          *accessor
	ctx        context.Context
	id         store.ObjectID
	prefix     string
	opts       store.ListOpts
	startAfter string

	queue   []store.DirEntry
	entry   store.DirEntry
	token   *string
	started bool
	done    bool
	err     error
}

func (l *lister) Scan() bool {
	for {
		if l.err != nil {
			return false
		}
		if len(l.queue) > 0 {
			l.entry = l.queue[0]
			l.queue = l.queue[1:]
			l.entry.More = len(l.queue) > 0 || !l.done
			return true
		}
		if l.done {
			return false
		}
		l.fetch()
	}
}

func (l *lister) fetch() {
	client, err := l.a.provider.Get(l.ctx, l.a.bucket)
	if err != nil {
		l.err = err
		return
	}
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(l.a.bucket),
		Prefix:  aws.String(l.prefix),
		MaxKeys: aws.Int64(listPageSize),
	}
	if !l.opts.Recursive {
		input.Delimiter = aws.String("/")
	}
	if l.token != nil {
		input.ContinuationToken = l.token
	} else if !l.started && l.startAfter != "" {
		input.StartAfter = aws.String(l.startAfter)
	}
	l.started = true
	out, err := client.ListObjectsV2WithContext(l.ctx, input)
	if err != nil {
		l.err = annotate(err, "list", string(l.id), "s3 list")
		return
	}
	for _, p := range out.CommonPrefixes {
		key := aws.StringValue(p.Prefix)
		l.queue = append(l.queue, store.DirEntry{
			ID:   store.ObjectID(strings.TrimPrefix(key, l.a.prefix)),
			Meta: store.Metadata{IsDir: true},
		})
	}
	for _, obj := range out.Contents {
		key := aws.StringValue(obj.Key)
		if key == l.prefix {
			// The directory's own marker object.
			continue
		}
		id := store.ObjectID(strings.TrimPrefix(key, l.a.prefix))
		meta := store.Metadata{
			Size: aws.Int64Value(obj.Size),
			ETag: strings.Trim(aws.StringValue(obj.ETag), `"`),
		}
		if obj.LastModified != nil {
			meta.ModTime = *obj.LastModified
		}
		if id.IsDir() {
			// A nested directory marker seen in a recursive listing.
			meta = store.Metadata{IsDir: true, ModTime: meta.ModTime}
		}
		l.queue = append(l.queue, store.DirEntry{ID: id, Meta: meta})
	}
	if aws.BoolValue(out.IsTruncated) {
		l.token = out.NextContinuationToken
	} else {
		l.done = true
	}
}

func (l *lister) Entry() store.DirEntry { return l.entry }
func (l *lister) Err() error            { return l.err }
