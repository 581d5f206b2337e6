package catalog

import "github.com/artpar/stackwizard/internal/core/domain"

// =============================================================================
// Builtin Templates
// =============================================================================

// Builtin returns the catalog shipped with the binary.
func Builtin() *Catalog {
	c, err := New(builtinTemplates()...)
	if err != nil {
		// The builtin list is static; a failure here is a programming error.
		panic(err)
	}
	return c
}

func builtinTemplates() []domain.Template {
	return []domain.Template{
		{
			ID: "nginx", Name: "Nginx", Category: "web", Icon: "globe",
			Tags: []string{"web", "proxy", "static"},
			Defaults: &domain.ServiceConfig{
				Name:               "nginx",
				Image:              "nginx:alpine",
				Ports:              []domain.PortMapping{{Host: 80, Container: 80}},
				Environment:        []domain.EnvVar{},
				Volumes:            []domain.VolumeMapping{{HostPath: "./html", ContainerPath: "/usr/share/nginx/html"}},
				MemoryGiB:          0.5,
				CPUCores:           0.5,
				RestartPolicy:      domain.RestartUnlessStopped,
				HealthcheckCommand: "curl -f http://localhost/ || exit 1",
			},
		},
		{
			ID: "node", Name: "Node.js", Category: "runtime", Icon: "hexagon",
			Tags: []string{"javascript", "runtime"},
			Defaults: &domain.ServiceConfig{
				Name:          "node-app",
				Image:         "node:20-alpine",
				Ports:         []domain.PortMapping{{Host: 3000, Container: 3000}},
				Environment:   []domain.EnvVar{{Key: "NODE_ENV", Value: "production"}},
				Volumes:       []domain.VolumeMapping{{HostPath: "./app", ContainerPath: "/usr/src/app"}},
				MemoryGiB:     1,
				CPUCores:      1,
				RestartPolicy: domain.RestartUnlessStopped,
				Command:       "npm start",
			},
		},
		{
			ID: "python", Name: "Python", Category: "runtime", Icon: "code",
			Tags: []string{"python", "runtime"},
			Defaults: &domain.ServiceConfig{
				Name:          "python-app",
				Image:         "python:3.12-slim",
				Ports:         []domain.PortMapping{{Host: 8000, Container: 8000}},
				Environment:   []domain.EnvVar{{Key: "PYTHONUNBUFFERED", Value: "1"}},
				Volumes:       []domain.VolumeMapping{{HostPath: "./app", ContainerPath: "/app"}},
				MemoryGiB:     1,
				CPUCores:      1,
				RestartPolicy: domain.RestartUnlessStopped,
				Command:       "python app.py",
			},
		},
		{
			ID: "postgres", Name: "PostgreSQL", Category: "database", Icon: "database",
			Tags: []string{"sql", "database"},
			Defaults: &domain.ServiceConfig{
				Name:  "postgres",
				Image: "postgres:16-alpine",
				Ports: []domain.PortMapping{{Host: 5432, Container: 5432}},
				Environment: []domain.EnvVar{
					{Key: "POSTGRES_USER", Value: "app"},
					{Key: "POSTGRES_PASSWORD", Value: "changeme", Secret: true},
					{Key: "POSTGRES_DB", Value: "app"},
				},
				Volumes:            []domain.VolumeMapping{{HostPath: "pgdata", ContainerPath: "/var/lib/postgresql/data"}},
				MemoryGiB:          2,
				CPUCores:           1,
				RestartPolicy:      domain.RestartAlways,
				HealthcheckCommand: "pg_isready -U app",
			},
		},
		{
			ID: "redis", Name: "Redis", Category: "cache", Icon: "zap",
			Tags: []string{"cache", "key-value"},
			Defaults: &domain.ServiceConfig{
				Name:               "redis",
				Image:              "redis:7-alpine",
				Ports:              []domain.PortMapping{{Host: 6379, Container: 6379}},
				Environment:        []domain.EnvVar{},
				Volumes:            []domain.VolumeMapping{{HostPath: "redis_data", ContainerPath: "/data"}},
				MemoryGiB:          0.5,
				CPUCores:           0.5,
				RestartPolicy:      domain.RestartAlways,
				HealthcheckCommand: "redis-cli ping",
			},
		},
		{
			ID: "mongo", Name: "MongoDB", Category: "database", Icon: "leaf",
			Tags: []string{"nosql", "database"},
			Defaults: &domain.ServiceConfig{
				Name:  "mongo",
				Image: "mongo:7",
				Ports: []domain.PortMapping{{Host: 27017, Container: 27017}},
				Environment: []domain.EnvVar{
					{Key: "MONGO_INITDB_ROOT_USERNAME", Value: "root"},
					{Key: "MONGO_INITDB_ROOT_PASSWORD", Value: "changeme", Secret: true},
				},
				Volumes:       []domain.VolumeMapping{{HostPath: "mongo_data", ContainerPath: "/data/db"}},
				MemoryGiB:     2,
				CPUCores:      1,
				RestartPolicy: domain.RestartAlways,
			},
		},
		{
			ID: "wordpress", Name: "WordPress + MySQL", Category: "stack", Icon: "layers",
			Tags: []string{"cms", "php", "mysql"},
			Stack: []domain.ServiceConfig{
				{
					Name:  "wordpress",
					Image: "wordpress:latest",
					Ports: []domain.PortMapping{{Host: 8080, Container: 80}},
					Environment: []domain.EnvVar{
						{Key: "WORDPRESS_DB_HOST", Value: "db"},
						{Key: "WORDPRESS_DB_USER", Value: "wordpress"},
						{Key: "WORDPRESS_DB_PASSWORD", Value: "wordpress", Secret: true},
						{Key: "WORDPRESS_DB_NAME", Value: "wordpress"},
					},
					Volumes:   []domain.VolumeMapping{{HostPath: "wordpress_data", ContainerPath: "/var/www/html"}},
					MemoryGiB: 1, CPUCores: 1,
					DependsOn: []string{"db"},
				},
				{
					Name:  "db",
					Image: "mysql:8.0",
					Environment: []domain.EnvVar{
						{Key: "MYSQL_DATABASE", Value: "wordpress"},
						{Key: "MYSQL_USER", Value: "wordpress"},
						{Key: "MYSQL_PASSWORD", Value: "wordpress", Secret: true},
						{Key: "MYSQL_ROOT_PASSWORD", Value: "changeme", Secret: true},
					},
					Volumes:   []domain.VolumeMapping{{HostPath: "db_data", ContainerPath: "/var/lib/mysql"}},
					MemoryGiB: 1, CPUCores: 1,
				},
			},
		},
		{
			ID: "mern", Name: "MERN Stack", Category: "stack", Icon: "layers",
			Tags: []string{"javascript", "mongodb", "react"},
			Stack: []domain.ServiceConfig{
				{
					Name:      "frontend",
					Image:     "node:20-alpine",
					Ports:     []domain.PortMapping{{Host: 3000, Container: 3000}},
					Volumes:   []domain.VolumeMapping{{HostPath: "./frontend", ContainerPath: "/app"}},
					Command:   "npm start",
					MemoryGiB: 1, CPUCores: 1,
					DependsOn: []string{"backend"},
				},
				{
					Name:  "backend",
					Image: "node:20-alpine",
					Ports: []domain.PortMapping{{Host: 5000, Container: 5000}},
					Environment: []domain.EnvVar{
						{Key: "MONGO_URL", Value: "mongodb://mongo:27017/app"},
					},
					Volumes:   []domain.VolumeMapping{{HostPath: "./backend", ContainerPath: "/app"}},
					Command:   "npm run server",
					MemoryGiB: 1, CPUCores: 1,
					DependsOn: []string{"mongo"},
				},
				{
					Name:      "mongo",
					Image:     "mongo:7",
					Volumes:   []domain.VolumeMapping{{HostPath: "mongo_data", ContainerPath: "/data/db"}},
					MemoryGiB: 2, CPUCores: 1,
				},
			},
		},
		{
			ID: "elk", Name: "ELK Stack", Category: "stack", Icon: "layers",
			Tags: []string{"logging", "search"},
			Stack: []domain.ServiceConfig{
				{
					Name:  "elasticsearch",
					Image: "docker.elastic.co/elasticsearch/elasticsearch:8.11.0",
					Ports: []domain.PortMapping{{Host: 9200, Container: 9200}},
					Environment: []domain.EnvVar{
						{Key: "discovery.type", Value: "single-node"},
						{Key: "xpack.security.enabled", Value: "false"},
					},
					Volumes:   []domain.VolumeMapping{{HostPath: "es_data", ContainerPath: "/usr/share/elasticsearch/data"}},
					MemoryGiB: 4, CPUCores: 2,
				},
				{
					Name:      "logstash",
					Image:     "docker.elastic.co/logstash/logstash:8.11.0",
					Ports:     []domain.PortMapping{{Host: 5044, Container: 5044}},
					Volumes:   []domain.VolumeMapping{{HostPath: "./logstash/pipeline", ContainerPath: "/usr/share/logstash/pipeline"}},
					MemoryGiB: 2, CPUCores: 1,
					DependsOn: []string{"elasticsearch"},
				},
				{
					Name:  "kibana",
					Image: "docker.elastic.co/kibana/kibana:8.11.0",
					Ports: []domain.PortMapping{{Host: 5601, Container: 5601}},
					Environment: []domain.EnvVar{
						{Key: "ELASTICSEARCH_HOSTS", Value: "http://elasticsearch:9200"},
					},
					MemoryGiB: 1, CPUCores: 1,
					DependsOn: []string{"elasticsearch"},
				},
			},
		},
	}
}
