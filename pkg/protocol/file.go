package protocol

// FileListRequest asks the agent for a directory listing.
type FileListRequest struct {
	Path string
}

func (*FileListRequest) payloadField() uint32 { return FieldFileListRequest }

func (m *FileListRequest) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.Path)
}

func decodeFileListRequest(d *Decoder) (*FileListRequest, error) {
	m := &FileListRequest{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Path, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FileEntry is one entry in a directory listing.
type FileEntry struct {
	Name              string
	IsDirectory       bool
	Size              uint64
	ModifiedEpochSecs uint64
	Permissions       string
}

func (m *FileEntry) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.Name)
	e.WriteBoolField(2, m.IsDirectory)
	e.WriteVarintField(3, m.Size)
	e.WriteVarintField(4, m.ModifiedEpochSecs)
	e.WriteStringField(5, m.Permissions)
}

func decodeFileEntry(d *Decoder) (FileEntry, error) {
	var m FileEntry
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return m, err
		}
		switch field {
		case 1:
			m.Name, err = d.StringField(wt)
		case 2:
			m.IsDirectory, err = d.BoolField(wt)
		case 3:
			m.Size, err = d.VarintField(wt)
		case 4:
			m.ModifiedEpochSecs, err = d.VarintField(wt)
		case 5:
			m.Permissions, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

// FileList is the agent's directory listing response.
type FileList struct {
	Path    string
	Entries []FileEntry
}

func (*FileList) payloadField() uint32 { return FieldFileList }

func (m *FileList) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.Path)
	for i := range m.Entries {
		entry := &m.Entries[i]
		e.WriteMessageField(2, entry.encodeBody)
	}
}

func decodeFileList(d *Decoder) (*FileList, error) {
	m := &FileList{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.Path, err = d.StringField(wt)
		case 2:
			var sub *Decoder
			sub, err = d.MessageField(wt)
			if err != nil {
				return nil, err
			}
			var entry FileEntry
			entry, err = decodeFileEntry(sub)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, entry)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FileTransferRequest initiates an upload to or download from the agent.
// The actual byte movement happens out of band over a presigned URL; this
// message only negotiates the transfer.
type FileTransferRequest struct {
	FileName   string
	FilePath   string
	FileSize   uint64
	Upload     bool
	TransferID string
}

func (*FileTransferRequest) payloadField() uint32 { return FieldFileTransferRequest }

func (m *FileTransferRequest) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.FileName)
	e.WriteStringField(2, m.FilePath)
	e.WriteVarintField(3, m.FileSize)
	e.WriteBoolField(4, m.Upload)
	e.WriteStringField(5, m.TransferID)
}

func decodeFileTransferRequest(d *Decoder) (*FileTransferRequest, error) {
	m := &FileTransferRequest{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.FileName, err = d.StringField(wt)
		case 2:
			m.FilePath, err = d.StringField(wt)
		case 3:
			m.FileSize, err = d.VarintField(wt)
		case 4:
			m.Upload, err = d.BoolField(wt)
		case 5:
			m.TransferID, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FileTransferAck is the server's answer to a FileTransferRequest. When
// accepted, PresignedURL is where the raw bytes go (upload) or come from
// (download); that HTTP exchange is outside the envelope protocol.
type FileTransferAck struct {
	TransferID   string
	Accepted     bool
	PresignedURL string
	Message      string
}

func (*FileTransferAck) payloadField() uint32 { return FieldFileTransferAck }

func (m *FileTransferAck) encodeBody(e *Encoder) {
	e.WriteStringField(1, m.TransferID)
	e.WriteBoolField(2, m.Accepted)
	e.WriteStringField(3, m.PresignedURL)
	e.WriteStringField(4, m.Message)
}

func decodeFileTransferAck(d *Decoder) (*FileTransferAck, error) {
	m := &FileTransferAck{}
	for !d.EOF() {
		field, wt, err := d.ReadTag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.TransferID, err = d.StringField(wt)
		case 2:
			m.Accepted, err = d.BoolField(wt)
		case 3:
			m.PresignedURL, err = d.StringField(wt)
		case 4:
			m.Message, err = d.StringField(wt)
		default:
			err = d.SkipField(wt)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
